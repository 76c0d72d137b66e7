package work_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mossberry/mossberry/internal/work"
)

func validPackage() work.Package {
	return work.Package{
		AuthorizationToken: "token",
		AuthorizationServiceDetails: work.AuthorizationServiceDetails{
			Host: "auth.example.com", URL: "https://auth.example.com/svc", Function: "authorize",
		},
		Context: "ctx",
		WorkItems: []work.Item{
			{ID: "w1", ProgramHash: "abc", InputData: "{}", GasLimit: 20},
			{ID: "w2", ProgramHash: "def", InputData: "{}", GasLimit: 30},
		},
	}
}

func TestPackageValidate(t *testing.T) {
	require.NoError(t, validPackage().Validate())

	p := validPackage()
	p.AuthorizationToken = ""
	assert.ErrorIs(t, p.Validate(), work.ErrPackageEmptyToken)

	p = validPackage()
	p.Context = ""
	assert.ErrorIs(t, p.Validate(), work.ErrPackageEmptyContext)

	p = validPackage()
	p.WorkItems = nil
	assert.ErrorIs(t, p.Validate(), work.ErrPackageNoItems)
}

func TestItemValidate(t *testing.T) {
	item := work.Item{ID: "w1", ProgramHash: "abc", GasLimit: 1}
	require.NoError(t, item.Validate())

	item.GasLimit = 0
	assert.ErrorIs(t, item.Validate(), work.ErrItemGasCeiling)

	item = work.Item{GasLimit: 10}
	assert.ErrorIs(t, item.Validate(), work.ErrItemEmptyID)
}

func TestPackageValidateSurfacesItemErrors(t *testing.T) {
	p := validPackage()
	p.WorkItems[1].GasLimit = -5
	err := p.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, work.ErrItemGasCeiling)
	assert.Contains(t, err.Error(), "work-item 1")
}

package contract_test

import (
	"testing"

	"github.com/openkraft/kraftlint/internal/domain/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndLookup(t *testing.T) {
	reg := contract.NewRegistry()
	require.NoError(t, reg.Register(contract.Registration{ID: "style.B", Constructor: describedRule}))
	require.NoError(t, reg.Register(contract.Registration{ID: "style.A", Constructor: describedRule}))

	_, ok := reg.Lookup("style.A")
	assert.True(t, ok)
	_, ok = reg.Lookup("style.C")
	assert.False(t, ok)
	assert.Equal(t, []string{"style.A", "style.B"}, reg.IDs())
}

func TestRegistry_RejectsDuplicatesAndEmptyIDs(t *testing.T) {
	reg := contract.NewRegistry()
	require.NoError(t, reg.Register(contract.Registration{ID: "style.A", Constructor: describedRule}))

	err := reg.Register(contract.Registration{ID: "style.A", Constructor: describedRule})
	assert.ErrorIs(t, err, contract.ErrDuplicateRule)
	assert.Error(t, reg.Register(contract.Registration{}))
	assert.Panics(t, func() { reg.MustRegister(contract.Registration{ID: "style.A"}) })
}

func TestRegistry_NewBuildsFreshInstances(t *testing.T) {
	reg := contract.NewRegistry()
	reg.MustRegister(contract.Registration{ID: "style.A", Constructor: describedRule})

	a, err := reg.New("style.A")
	require.NoError(t, err)
	b, err := reg.Factory("style.A")()
	require.NoError(t, err)
	assert.NotSame(t, a, b)
}

func TestRegistry_NewErrors(t *testing.T) {
	reg := contract.NewRegistry()
	reg.MustRegister(contract.Registration{ID: "x.NotRule", Constructor: func() notARule { return notARule{} }})
	reg.MustRegister(contract.Registration{ID: "x.Param", Constructor: func(int) *goodRule { return nil }})

	_, err := reg.New("x.Missing")
	assert.ErrorIs(t, err, contract.ErrUnknownRule)

	_, err = reg.New("x.NotRule")
	assert.ErrorIs(t, err, contract.ErrNotImplementRule)

	_, err = reg.New("x.Param")
	assert.ErrorIs(t, err, contract.ErrRequiresArgs)
}

func TestRegistry_Defaults(t *testing.T) {
	reg := contract.NewRegistry()
	reg.MustRegister(contract.Registration{ID: "style.Off", Constructor: describedRule})
	reg.MustRegister(contract.Registration{ID: "style.On", Constructor: func() *goodRule {
		r := describedRule()
		r.desc.EnabledByDefault = true
		return r
	}})
	reg.MustRegister(contract.Registration{ID: "style.Broken", Constructor: func() *goodRule { return nil }})

	assert.Equal(t, []string{"style.On"}, reg.Defaults())
}

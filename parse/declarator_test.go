package parse

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type declaratorCase struct {
	Src  string `yaml:"src"`
	Type string `yaml:"type"`
}

// The table exercises the whole chain from declarator tokens through
// the tree to the resolved type's rendering.
func TestDeclaratorTable(t *testing.T) {
	raw, err := os.ReadFile("testdata/declarators.yaml")
	require.NoError(t, err)

	var table struct {
		Cases []declaratorCase `yaml:"cases"`
	}
	require.NoError(t, yaml.Unmarshal(raw, &table))
	require.NotEmpty(t, table.Cases)

	for _, tc := range table.Cases {
		t.Run(tc.Src, func(t *testing.T) {
			c := compile(t, tc.Src)
			c.requireClean(t)
			require.Equal(t, tc.Type, c.lookupType(t, "x"))
		})
	}
}

func TestFindDeclEndStopsAtInitializer(t *testing.T) {
	c := compile(t, "int *p = 0, q[2];")
	c.requireClean(t)
	require.Equal(t, "pointer to int", c.lookupType(t, "p"))
	require.Equal(t, "array(2) of int", c.lookupType(t, "q"))
}

func TestMismatchedBrackets(t *testing.T) {
	c := compile(t, "int a[2;")
	require.Nil(t, c.root)
	require.False(t, c.errs.OK())
}

func TestAbstractFunctionParameter(t *testing.T) {
	// The parameter list's own paren may open the whole declarator.
	c := compile(t, "int f(int (int));")
	c.requireClean(t)
	require.Equal(t,
		"function(pointer to function(int) returning int) returning int",
		c.lookupType(t, "f"))
}

package environ

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpand(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		envVars     map[string]string
		unset       []string
		expected    string
		expectError bool
	}{
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "no placeholders",
			input:    "shopping_cart_python/main.py",
			expected: "shopping_cart_python/main.py",
		},
		{
			name:     "single variable",
			input:    "${CARTLAUNCH_EXPAND_PY}",
			envVars:  map[string]string{"CARTLAUNCH_EXPAND_PY": "python3.12"},
			expected: "python3.12",
		},
		{
			name:     "variable inside path",
			input:    "/srv/${CARTLAUNCH_EXPAND_APP}/main.py",
			envVars:  map[string]string{"CARTLAUNCH_EXPAND_APP": "cart"},
			expected: "/srv/cart/main.py",
		},
		{
			name:     "fallback used when unset",
			input:    "--port=${CARTLAUNCH_EXPAND_PORT:8000}",
			unset:    []string{"CARTLAUNCH_EXPAND_PORT"},
			expected: "--port=8000",
		},
		{
			name:     "environment wins over fallback",
			input:    "--port=${CARTLAUNCH_EXPAND_PORT:8000}",
			envVars:  map[string]string{"CARTLAUNCH_EXPAND_PORT": "10000"},
			expected: "--port=10000",
		},
		{
			name:     "empty fallback",
			input:    "x${CARTLAUNCH_EXPAND_EMPTY:}y",
			unset:    []string{"CARTLAUNCH_EXPAND_EMPTY"},
			expected: "xy",
		},
		{
			name:        "undefined without fallback",
			input:       "${CARTLAUNCH_EXPAND_MISSING}",
			unset:       []string{"CARTLAUNCH_EXPAND_MISSING"},
			expected:    "${CARTLAUNCH_EXPAND_MISSING}",
			expectError: true,
		},
		{
			name:     "lowercase names are placeholders too",
			input:    "${cartlaunch_expand_lower}",
			envVars:  map[string]string{"cartlaunch_expand_lower": "value"},
			expected: "value",
		},
		{
			name:        "undefined lowercase name",
			input:       "${cartlaunch_expand_lower_missing}",
			unset:       []string{"cartlaunch_expand_lower_missing"},
			expected:    "${cartlaunch_expand_lower_missing}",
			expectError: true,
		},
		{
			name:     "bare dollar is untouched",
			input:    "$HOME",
			expected: "$HOME",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}
			for _, key := range tt.unset {
				unsetEnv(t, key)
			}

			result, err := Expand(tt.input)
			if tt.expectError {
				require.ErrorIs(t, err, ErrUndefinedVar)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestExpandAll(t *testing.T) {
	t.Setenv("CARTLAUNCH_EXPAND_MODULE", "shopping_cart_python.main")
	unsetEnv(t, "CARTLAUNCH_EXPAND_NOPE")

	out, err := ExpandAll([]string{"-m", "${CARTLAUNCH_EXPAND_MODULE}"})
	require.NoError(t, err)
	assert.Equal(t, []string{"-m", "shopping_cart_python.main"}, out)

	out, err = ExpandAll([]string{"${CARTLAUNCH_EXPAND_NOPE}", "ok"})
	require.ErrorIs(t, err, ErrUndefinedVar)
	assert.Equal(t, []string{"${CARTLAUNCH_EXPAND_NOPE}", "ok"}, out)

	out, err = ExpandAll(nil)
	require.NoError(t, err)
	assert.Nil(t, out)
}

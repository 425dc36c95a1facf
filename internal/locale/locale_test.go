package locale

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatter_Int(t *testing.T) {
	t.Parallel()

	br := MustNew("pt-BR")
	assert.Equal(t, "0", br.Int(0))
	assert.Equal(t, "999", br.Int(999))
	assert.Equal(t, "1.234.567", br.Int(1234567))

	us := MustNew("en-US")
	assert.Equal(t, "1,234,567", us.Int(1234567))
}

func TestFormatter_Currency(t *testing.T) {
	t.Parallel()

	br := MustNew("pt-BR")
	assert.Equal(t, "R$ 450.000,00", br.Currency(450000))
	assert.Equal(t, "R$ 1.234,50", br.Currency(1234.5))
	assert.Equal(t, "R$ 12.345,679", br.Currency(12345.6789))
}

func TestNew_InvalidTag(t *testing.T) {
	t.Parallel()

	_, err := New("not a tag!")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "locale: parse tag")
}

func TestFormatter_Tag(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "pt-BR", MustNew("pt-BR").Tag())
}

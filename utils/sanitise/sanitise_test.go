package sanitise_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openhms/hms/utils/sanitise"
)

// The reflect sets these in-situ, even when not pointers so we need to reset
// for each test
const strXSS1 = "<SCRIPT></SCRIPT>"
const strSAN1 = ""

const strXSS2 = "Hello <SCRIPT></SCRIPT> Bye"
const strSAN2 = "Hello  Bye"

const strXSS3 = "Bye <b>Hello</b>"
const strSAN3 = "Bye Hello"

func TestSanitisation(t *testing.T) {
	t.Run("Should sanitise strings", func(t *testing.T) {
		input := strXSS1
		ret, err := sanitise.Stringlikes(&input)
		require.NoError(t, err)
		assert.Equal(t, strSAN1, *ret)
	})

	t.Run("Should sanitise string pointer lists", func(t *testing.T) {
		testStrXSS1 := strXSS1
		testStrXSS2 := strXSS2

		input := []*string{&testStrXSS1, &testStrXSS2, nil}
		ret, err := sanitise.Stringlikes(&input)
		require.NoError(t, err)
		assert.Equal(t, strSAN1, *(*ret)[0])
		assert.Equal(t, strSAN2, *(*ret)[1])
		assert.Nil(t, (*ret)[2])
	})

	t.Run("Should sanitise structs", func(t *testing.T) {
		type item struct {
			Dosage string
			Qty    int
		}

		type record struct {
			ID        uuid.UUID
			VisitDate time.Time
			Diagnosis string
			Notes     *string
			Items     []item
			Missing   *string
		}

		notes := strXSS3
		visit := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
		id := uuid.New()

		input := record{
			ID:        id,
			VisitDate: visit,
			Diagnosis: strXSS2,
			Notes:     &notes,
			Items:     []item{{Dosage: "<i>5mg</i>", Qty: 2}},
		}

		ret, err := sanitise.Stringlikes(&input)
		require.NoError(t, err)
		assert.Equal(t, record{
			ID:        id,
			VisitDate: visit,
			Diagnosis: strSAN2,
			Notes:     &notes,
			Items:     []item{{Dosage: "5mg", Qty: 2}},
		}, *ret)
		assert.Equal(t, strSAN3, notes)
	})
}

func TestPlainTextKept(t *testing.T) {
	for _, value := range []string{
		"St Mary's Hospital",
		"Smith & Jones",
		"patient@example.com",
		"10d90855-cf4a-4396-8db7-caf41171766f",
		"BP \"normal\"",
	} {
		t.Run(value, func(t *testing.T) {
			input := value
			ret, err := sanitise.Stringlikes(&input)
			require.NoError(t, err)
			assert.Equal(t, value, *ret)
		})
	}
}

func TestEncodedMarkupRemoved(t *testing.T) {
	res, err := sanitise.String("Fine &lt;script&gt;alert(1)&lt;/script&gt;")
	require.NoError(t, err)
	assert.Equal(t, "Fine ", res)
}

func TestSanitiseTurnedOff(t *testing.T) {
	type s struct {
		I int
		S string `hms:"sanitise:false"`
	}

	sinst := s{I: 10, S: strXSS2}
	ret, err := sanitise.Stringlikes(&sinst)
	require.NoError(t, err)
	assert.Equal(t, s{I: 10, S: strXSS2}, *ret)
}

func TestBadTag(t *testing.T) {
	type s struct {
		S string `hms:"sanitise:maybe"`
	}

	_, err := sanitise.Stringlikes(&s{S: "x"})
	assert.ErrorIs(t, err, sanitise.ErrSanitisation)
}

func TestNonSupportedTypes(t *testing.T) {
	_, err := sanitise.Stringlikes(map[int]int{1: 2})
	assert.ErrorIs(t, err, sanitise.ErrUnsupportedSanitisationType)
}

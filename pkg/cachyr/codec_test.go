package cachyr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_StringCodec_Round_Trips_When_Valid_UTF8(t *testing.T) {
	t.Parallel()

	codec := StringCodec{}

	data, err := codec.Encode("23°C in Ålesund")
	require.NoError(t, err)

	value, err := codec.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "23°C in Ålesund", value)
}

func Test_StringCodec_Fails_When_Content_Is_Not_UTF8(t *testing.T) {
	t.Parallel()

	_, err := StringCodec{}.Decode([]byte{0xFF, 0xFE, 0x00})
	assert.Error(t, err)
}

func Test_JSONCodec_Round_Trips_Struct_When_Encoded(t *testing.T) {
	t.Parallel()

	type forecast struct {
		Place   string  `json:"place"`
		Celsius float64 `json:"celsius"`
	}

	codec := JSONCodec[forecast]{}

	data, err := codec.Encode(forecast{Place: "oslo", Celsius: 23})
	require.NoError(t, err)

	value, err := codec.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, forecast{Place: "oslo", Celsius: 23}, value)
}

func Test_JSONCodec_Fails_When_Content_Is_Not_JSON(t *testing.T) {
	t.Parallel()

	_, err := JSONCodec[map[string]int]{}.Decode([]byte("{not json"))
	assert.Error(t, err)
}

func Test_JSONCodec_Works_Through_Cache_When_Round_Tripped(t *testing.T) {
	t.Parallel()

	baseDir := t.TempDir()
	requireXattrSupport(t, baseDir)

	type forecast struct {
		Place   string  `json:"place"`
		Celsius float64 `json:"celsius"`
	}

	cache, err := Open("forecasts", JSONCodec[forecast]{}, Options{
		BaseDir: baseDir,
		Logger:  testLogger(),
	})
	require.NoError(t, err)

	want := forecast{Place: "oslo", Celsius: 23}
	cache.Set("weather/oslo", want)

	got, ok := cache.Get("weather/oslo")
	require.True(t, ok)
	assert.Equal(t, want, got)
}

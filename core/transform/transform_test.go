package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnakeToCamel(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"display_name", "displayName"},
		{"audio_url", "audioUrl"},
		{"non_field_errors", "nonFieldErrors"},
		{"id", "id"},
		{"alreadyCamel", "alreadyCamel"},
		{"__leading", "leading"},
		{"trailing_", "trailing"},
		{"", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, SnakeToCamel(c.in), "SnakeToCamel(%q)", c.in)
	}
}

func TestCamelToSnake(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"displayName", "display_name"},
		{"audioURL", "audio_u_r_l"},
		{"trackID", "track_i_d"},
		{"id", "id"},
		{"already_snake", "already_snake"},
		{"", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, CamelToSnake(c.in), "CamelToSnake(%q)", c.in)
	}
}

func TestSnakeRoundTripRestoresKeys(t *testing.T) {
	in := map[string]interface{}{
		"audioURL":    "x",
		"trackID":     float64(1),
		"displayName": "Mika",
		"plain":       true,
		"nested": map[string]interface{}{
			"coverURL": "y",
			"items":    []interface{}{map[string]interface{}{"itemID": float64(2)}},
		},
	}
	assert.Equal(t, in, ToCamelValue(ToSnakeValue(in)))

	for _, key := range []string{"audioURL", "trackID", "displayName", "x2Y", "id"} {
		assert.Equal(t, key, SnakeToCamel(CamelToSnake(key)), "round trip of %q", key)
	}
}

func TestToSnakeValueDeep(t *testing.T) {
	in := map[string]interface{}{
		"displayName": "Mika",
		"likedTracks": []interface{}{
			map[string]interface{}{"trackId": float64(1), "audioUrl": "x"},
		},
		"count": float64(2),
	}

	got := ToSnakeValue(in).(map[string]interface{})
	assert.Equal(t, "Mika", got["display_name"])
	assert.Equal(t, float64(2), got["count"])

	tracks := got["liked_tracks"].([]interface{})
	first := tracks[0].(map[string]interface{})
	assert.Equal(t, float64(1), first["track_id"])
	assert.Equal(t, "x", first["audio_url"])
}

func TestToCamelValueDeep(t *testing.T) {
	in := map[string]interface{}{
		"display_name": "Mika",
		"liked_tracks": []interface{}{
			map[string]interface{}{"track_id": float64(1)},
		},
	}

	got := ToCamelValue(in).(map[string]interface{})
	assert.Equal(t, "Mika", got["displayName"])
	tracks := got["likedTracks"].([]interface{})
	assert.Equal(t, float64(1), tracks[0].(map[string]interface{})["trackId"])
}

func TestRoundTripPreservesScalars(t *testing.T) {
	assert.Equal(t, "plain", ToCamelValue("plain"))
	assert.Equal(t, float64(3), ToSnakeValue(float64(3)))
	assert.Nil(t, ToCamelValue(nil))
}

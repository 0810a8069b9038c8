package providers

import "testing"

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		ms   int
		want string
	}{
		{185000, "3:05"},
		{60000, "1:00"},
		{59999, "0:59"},
		{0, "0:00"},
		{600123, "10:00"},
	}

	for _, tc := range cases {
		if got := FormatDuration(tc.ms); got != tc.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tc.ms, got, tc.want)
		}
	}
}

func TestParseDuration(t *testing.T) {
	t.Run("Round Trip", func(t *testing.T) {
		seconds, err := ParseDuration(FormatDuration(185000))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if seconds != 185 {
			t.Errorf("expected 185 seconds, got %d", seconds)
		}
	})

	t.Run("Valid", func(t *testing.T) {
		seconds, err := ParseDuration("3:05")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if seconds != 185 {
			t.Errorf("expected 185 seconds, got %d", seconds)
		}
	})

	t.Run("Invalid", func(t *testing.T) {
		for _, input := range []string{"", "3", "a:b", ":"} {
			if _, err := ParseDuration(input); err == nil {
				t.Errorf("expected error for %q", input)
			}
		}
	})
}

func TestYearFromReleaseDate(t *testing.T) {
	cases := []struct {
		date string
		want string
	}{
		{"1969-09-26", "1969"},
		{"1969", "1969"},
		{"", ""},
		{"69", "69"},
	}

	for _, tc := range cases {
		if got := YearFromReleaseDate(tc.date); got != tc.want {
			t.Errorf("YearFromReleaseDate(%q) = %q, want %q", tc.date, got, tc.want)
		}
	}
}

func TestKindMapping(t *testing.T) {
	if got := spotifyKind("song"); got != "track" {
		t.Errorf("expected song to map to track, got %q", got)
	}
	if got := spotifyKind("artist"); got != "artist" {
		t.Errorf("expected artist to map to artist, got %q", got)
	}
	if got := discogsKind("song"); got != "release" {
		t.Errorf("expected song to map to release, got %q", got)
	}
	if got := discogsKind("album"); got != "album" {
		t.Errorf("expected album to map to album, got %q", got)
	}
}

package movies

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYearFromTitle(t *testing.T) {
	cases := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{"plain year", "Pain in Seeing (2017)", "2017", true},
		{"disambiguation suffix", `"Beer OClock with Slosh & Buuz" (2014/I)`, "2014", true},
		{"no parens", "no parens here", "", false},
		{"unknown year", "Lost Reel (????)", "", false},
		{"too short", "Short (19", "", false},
		{"episode suffix ignored", `"Show" (2009) {Pilot (#1.1)}`, "2009", true},
		{"first paren wins", "Remake (1999) (V)", "1999", true},
		{"paren without space", "Odd(2001)", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := YearFromTitle(tc.input)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestStripTitle(t *testing.T) {
	assert.Equal(t, "Pain in Seeing", StripTitle("Pain in Seeing (2017)"))
	assert.Equal(t, `"Beer OClock with Slosh & Buuz"`, StripTitle(`"Beer OClock with Slosh & Buuz" (2014/I)`))
	assert.Equal(t, "no parens here", StripTitle("no parens here"))
}

func header(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString("header line\n")
	}
	return b.String()
}

func TestScanner(t *testing.T) {
	input := "\xef\xbb\xbf" + header(HeaderLines) +
		"Foo (1999)\t\t\tLviv, Ukraine\n" +
		"Bar (2000)\tParis, France\t(studio)\r\n" +
		"\n" +
		"orphan title only\n" +
		"--------------------------------------------------------------------------------\n" +
		"Baz (2001)\t\tRome, Italy\t\t(exteriors)\n" +
		"Qux (2002)\tKyiv, Ukraine  \n"

	s, err := NewScanner(strings.NewReader(input), HeaderLines)
	require.NoError(t, err)

	var got []Record
	for s.Scan() {
		got = append(got, *s.Record())
	}
	require.NoError(t, s.Err())
	assert.Equal(t, []Record{
		{Line: 15, Title: "Foo (1999)", Location: "Lviv, Ukraine"},
		{Line: 16, Title: "Bar (2000)", Location: "Paris, France"},
		{Line: 20, Title: "Baz (2001)", Location: "Rome, Italy"},
		{Line: 21, Title: "Qux (2002)", Location: "Kyiv, Ukraine"},
	}, got)
}

func TestScannerEmptyInput(t *testing.T) {
	s, err := NewScanner(strings.NewReader(""), HeaderLines)
	require.NoError(t, err)
	assert.False(t, s.Scan())
	assert.NoError(t, s.Err())
}

func TestScannerHeaderOnly(t *testing.T) {
	s, err := NewScanner(strings.NewReader(header(HeaderLines)), HeaderLines)
	require.NoError(t, err)
	assert.False(t, s.Scan())
	assert.NoError(t, s.Err())
}

package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_NoHeader(t *testing.T) {
	cases := map[string]string{
		"plain body":          "# Title\nbody\n",
		"leading blank line":  "\n---\ntitle: x\n---\n",
		"unclosed":            "---\ntitle: x\nbody\n",
		"no newline at close": "---\ntitle: x\n---",
		"four hyphens":        "----\ntitle: x\n----\n",
		"empty":               "",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Nil(t, Extract(content))
		})
	}
}

func TestExtract_EmptyBlock(t *testing.T) {
	for _, content := range []string{"---\n\n---\n", "---\n\n---\nbody", "---\n# only a comment\n---\n"} {
		r := Extract(content)
		require.NotNil(t, r, "content %q", content)
		assert.Empty(t, r)
	}
}

func TestExtract_AdjacentDelimitersAreNotAHeader(t *testing.T) {
	assert.Nil(t, Extract("---\n---\n"))
	assert.Nil(t, Extract("---\r\n---\r\nbody"))
}

func TestExtract_ScalarTypes(t *testing.T) {
	content := "---\n" +
		"title: \"Hello, World\"\n" +
		"subtitle: 'single'\n" +
		"draft: true\n" +
		"published: false\n" +
		"views: 42\n" +
		"ratio: 3.14\n" +
		"name: 42abc\n" +
		"quoted_num: \"42\"\n" +
		"empty:\n" +
		"url: https://example.com/a\n" +
		"---\n" +
		"body\n"

	want := Record{
		"title":      "Hello, World",
		"subtitle":   "single",
		"draft":      true,
		"published":  false,
		"views":      float64(42),
		"ratio":      3.14,
		"name":       "42abc",
		"quoted_num": "42",
		"empty":      "",
		"url":        "https://example.com/a",
	}
	assert.Equal(t, want, Extract(content))
}

func TestExtract_SkipsCommentsAndMalformedLines(t *testing.T) {
	content := "---\n" +
		"# comment: ignored\n" +
		"   \n" +
		"no colon here\n" +
		"  key  :  value  \n" +
		"---\n"
	assert.Equal(t, Record{"key": "value"}, Extract(content))
}

func TestExtract_DuplicateKeysLastWins(t *testing.T) {
	assert.Equal(t, Record{"a": float64(2)}, Extract("---\na: 1\na: 2\n---\n"))
}

func TestExtract_NonFiniteNumbersStayStrings(t *testing.T) {
	r := Extract("---\na: Infinity\nb: NaN\nc: 1e400\n---\n")
	assert.Equal(t, Record{"a": "Infinity", "b": "NaN", "c": "1e400"}, r)
}

func TestExtract_CRLF(t *testing.T) {
	r := Extract("---\r\ntitle: Hi\r\n---\r\nbody")
	assert.Equal(t, Record{"title": "Hi"}, r)
}

func TestExtract_Idempotent(t *testing.T) {
	content := "---\ntitle: Hi\ncount: 3\n---\nbody"
	assert.Equal(t, Extract(content), Extract(content))
}

func TestScalar_SingleQuoteChar(t *testing.T) {
	assert.Equal(t, `"`, scalar(`"`))
	assert.Equal(t, "", scalar(`""`))
	assert.Equal(t, `"mixed'`, scalar(`"mixed'`))
}

func TestScalar_Numbers(t *testing.T) {
	cases := map[string]any{
		"0x1F":  float64(31),
		"0X1f":  float64(31),
		"0b101": float64(5),
		"0o17":  float64(15),
		"-2.5":  -2.5,
		".5":    0.5,
		"1e3":   float64(1000),
		"0x1p4": "0x1p4",
		"0x":    "0x",
		"0x-1":  "0x-1",
		"-0x1F": "-0x1F",
		"1_000": "1_000",
		"0x1_F": "0x1_F",
		"0b102": "0b102",
	}
	for in, want := range cases {
		assert.Equal(t, want, scalar(in), "input %q", in)
	}
}

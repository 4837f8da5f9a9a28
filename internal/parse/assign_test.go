package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ampco/intake-cli/internal/stage"
)

const fencedResponse = "Here is the extracted data:\n" +
	"```python\n" +
	"self.customer = \"Acme Corp\"\n" +
	"self.order_date = '03/15/2024'\n" +
	"# lines as printed\n" +
	"self.order_lines = [\n" +
	"    {\"product\": \"LED-100\", \"quantity\": 10, \"price\": \"1,234.50\"},  # first\n" +
	"    {'product': 'LED-200', 'quantity': 2.5, 'price': 0},\n" +
	"]\n" +
	"self.currency = 'usd'  # stated in header\n" +
	"```\n" +
	"Let me know if you need anything else.\n"

func TestParseAssignments_FencedWithCommentary(t *testing.T) {
	rec, err := ParseAssignments(fencedResponse)
	require.NoError(t, err)

	assert.Equal(t, Record{
		"customer":   "Acme Corp",
		"order_date": "03/15/2024",
		"order_lines": []any{
			map[string]any{"product": "LED-100", "quantity": Number("10"), "price": "1,234.50"},
			map[string]any{"product": "LED-200", "quantity": Number("2.5"), "price": Number("0")},
		},
		"currency": "usd",
	}, rec)
}

func TestParseAssignments_Literals(t *testing.T) {
	raw := `name = 'O\'Neil'
cafe = "caf\u00e9"
notes = """first line
second line"""
joined = "ab" 'cd'
raw_path = r'C:\temp'
flags = [True, False, None]
pair = (1, 2)
paren = (5)
single = (5,)
neg = -3.5
frac = .5
big = 1_000
sci = 1e3
empty = []
nested = {"a": [1, {"b": ()}], 2: 'two'}
`
	rec, err := ParseAssignments(raw)
	require.NoError(t, err)

	assert.Equal(t, "O'Neil", rec["name"])
	assert.Equal(t, "café", rec["cafe"])
	assert.Equal(t, "first line\nsecond line", rec["notes"])
	assert.Equal(t, "abcd", rec["joined"])
	assert.Equal(t, `C:\temp`, rec["raw_path"])
	assert.Equal(t, []any{true, false, nil}, rec["flags"])
	assert.Equal(t, Tuple{Number("1"), Number("2")}, rec["pair"])
	assert.Equal(t, Number("5"), rec["paren"])
	assert.Equal(t, Tuple{Number("5")}, rec["single"])
	assert.Equal(t, Number("-3.5"), rec["neg"])
	assert.Equal(t, Number("0.5"), rec["frac"])
	assert.Equal(t, Number("1000"), rec["big"])
	assert.Equal(t, Number("1e3"), rec["sci"])
	assert.Equal(t, []any{}, rec["empty"])
	assert.Equal(t, map[string]any{
		"a": []any{Number("1"), map[string]any{"b": Tuple{}}},
		"2": "two",
	}, rec["nested"])
}

func TestParseAssignments_LastAssignmentWins(t *testing.T) {
	rec, err := ParseAssignments("customer = 'A'\ncustomer = 'B'\n")
	require.NoError(t, err)
	assert.Equal(t, "B", rec["customer"])
}

func TestParseAssignments_Rejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		line int
		msg  string
	}{
		{"function call", "customer = get_customer()\n", 1, "unsupported expression"},
		{"import", "x = __import__('os')\n", 1, "unsupported expression"},
		{"arithmetic", "total = 1 + 2\n", 1, "unexpected"},
		{"statement inside block", "customer = 'A'\nprint(customer)\norder_date = '2024-01-01'\n", 2, "not an assignment"},
		{"comparison inside block", "a = 1\na == 2\nb = 3\n", 2, "not an assignment"},
		{"unterminated string", "customer = \"Acme\n", 1, "unterminated string"},
		{"unclosed list", "order_lines = [1, 2\n", 1, "unclosed"},
		{"two statements", "a = 1; b = 2\n", 1, "multiple statements"},
		{"value on next line", "a =\n5\n", 1, "unexpected character"},
		{"missing colon", "d = {'a' 1}\n", 1, "expected ':'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAssignments(tt.raw)
			require.Error(t, err)

			var pe *stage.ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.line, pe.Line)
			assert.Contains(t, pe.Msg, tt.msg)
			assert.Equal(t, tt.raw, pe.Raw)
		})
	}
}

func TestParseAssignments_NoAssignments(t *testing.T) {
	_, err := ParseAssignments("I could not read the document.")
	var pe *stage.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, pe.Error(), "no assignment statements")

	name, ok := stage.Of(err)
	assert.True(t, ok)
	assert.Equal(t, stage.Parse, name)
}

func TestParseAssignments_Idempotent(t *testing.T) {
	first, err := ParseAssignments(fencedResponse)
	require.NoError(t, err)
	second, err := ParseAssignments(fencedResponse)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	again, err := ParseAssignments(first.Render())
	require.NoError(t, err)
	assert.Equal(t, first, again)
	assert.Equal(t, first.Render(), again.Render())
}

func TestRender(t *testing.T) {
	rec := Record{
		"b": Tuple{Number("1")},
		"a": map[string]any{"y": nil, "x": true},
		"c": "say \"hi\"",
	}
	assert.Equal(t, "a = {\"x\": True, \"y\": None}\nb = (1,)\nc = \"say \\\"hi\\\"\"\n", rec.Render())
}

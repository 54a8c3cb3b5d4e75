package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "kycore/pkg/domain-errors"
)

func TestMoney(t *testing.T) {
	t.Run("from cents", func(t *testing.T) {
		m, err := MoneyFromCents(1050)
		require.NoError(t, err)
		assert.Equal(t, "10.50", m.String())
		assert.True(t, m.Decimal().Equal(decimal.RequireFromString("10.5")))
		assert.Equal(t, int64(1050), m.ToCents())
	})

	t.Run("rejects invalid amounts", func(t *testing.T) {
		for _, raw := range []string{"-0.01", "1.001", "abc", ""} {
			_, err := ParseMoney(raw)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeArgumentInvalid), raw)
		}
		_, err := MoneyFromCents(-1)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeArgumentInvalid))
	})

	t.Run("accepts whole and two place amounts", func(t *testing.T) {
		for _, raw := range []string{"0", "7", "7.5", "7.50", "9999999999.99"} {
			_, err := ParseMoney(raw)
			assert.NoError(t, err, raw)
		}
	})

	t.Run("arithmetic returns new values", func(t *testing.T) {
		a, _ := ParseMoney("10.25")
		b, _ := ParseMoney("0.75")

		sum := a.Add(b)
		assert.Equal(t, "11.00", sum.String())
		assert.Equal(t, "10.25", a.String())

		diff, err := a.Subtract(b)
		require.NoError(t, err)
		assert.Equal(t, "9.50", diff.String())

		_, err = b.Subtract(a)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeArgumentInvalid))
	})

	t.Run("percent rounds up to the cent", func(t *testing.T) {
		m, _ := ParseMoney("10.00")
		p, _ := ParsePercent("15")
		assert.Equal(t, "1.50", m.Percent(p).String())

		m, _ = ParseMoney("0.10")
		p, _ = ParsePercent("33")
		assert.Equal(t, "0.04", m.Percent(p).String())
	})

	t.Run("equality is by value", func(t *testing.T) {
		a, _ := ParseMoney("1.5")
		b, _ := ParseMoney("1.50")
		assert.True(t, a.Equal(b))
		assert.True(t, ZeroMoney().IsZero())
	})
}

func TestPercent(t *testing.T) {
	p, err := ParsePercent("12.345")
	require.NoError(t, err)
	assert.Equal(t, "0.1235", p.Multiplier().String())

	_, err = ParsePercent("-1")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeArgumentInvalid))

	q, _ := ParsePercent("2.655")
	assert.Equal(t, "15.00", p.Add(q).String())
	_, err = q.Subtract(p)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeArgumentInvalid))
}

func TestTimestamp(t *testing.T) {
	t.Run("rejects zero time", func(t *testing.T) {
		_, err := NewTimestamp(time.Time{})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeArgumentInvalid))
	})

	t.Run("truncates to microseconds", func(t *testing.T) {
		ts, err := NewTimestamp(time.Date(2024, 3, 1, 12, 0, 0, 123456789, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, 123456000, ts.Time().Nanosecond())
	})

	t.Run("arithmetic and comparison", func(t *testing.T) {
		a := FromUnix(1_700_000_000)
		b := a.Add(90 * time.Minute)
		assert.True(t, b.After(a))
		assert.True(t, a.Before(b))
		assert.Equal(t, 90*time.Minute, b.Diff(a))
		assert.Equal(t, int64(1_700_000_000), a.Unix())
		assert.Equal(t, a.Time().AddDate(0, 1, 0), a.AddDate(0, 1, 0).Time())
		assert.True(t, a.IsInPast())
		assert.True(t, Now().Add(time.Hour).IsInFuture())
	})

	t.Run("equality ignores zone", func(t *testing.T) {
		berlin, err := ParseTimezone("Europe/Berlin")
		require.NoError(t, err)
		a := FromUnix(1_700_000_000)
		assert.True(t, a.Equal(a.In(berlin)))
	})

	t.Run("day boundaries follow the timezone", func(t *testing.T) {
		tokyo, err := ParseTimezone("Asia/Tokyo")
		require.NoError(t, err)
		ts, err := ParseTimestamp("2024-03-01T20:00:00Z")
		require.NoError(t, err)

		start := ts.StartOfDay(tokyo)
		assert.Equal(t, "2024-03-01T15:00:00Z", start.String())
		end := ts.EndOfDay(tokyo)
		assert.Equal(t, "2024-03-02T14:59:59.999999Z", end.String())
		assert.Equal(t, "2024-03-01T00:00:00Z", ts.StartOfDay(UTC()).String())
	})

	t.Run("unknown timezone", func(t *testing.T) {
		_, err := ParseTimezone("Mars/Olympus")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeArgumentInvalid))
	})
}

type color string

var colors = NewEnumSet[color]("color", "red", "green")

func TestEnum(t *testing.T) {
	red, err := colors.Parse("red")
	require.NoError(t, err)
	assert.Equal(t, color("red"), red.Get())
	assert.True(t, red.Equal(colors.MustOf("red")))
	assert.False(t, red.Equal(colors.MustOf("green")))

	_, err = colors.Parse("blue")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeArgumentInvalid))
	_, err = colors.Parse("")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeArgumentInvalid))

	v, err := red.Value()
	require.NoError(t, err)
	assert.Equal(t, "red", v)
	assert.Equal(t, []color{"red", "green"}, colors.Values())
}

func TestEmail(t *testing.T) {
	t.Cleanup(func() { SetEnvironment("") })

	t.Run("production strips tags", func(t *testing.T) {
		SetEnvironment(EnvProduction)
		e, err := NewEmail("Foo+bar@Example.com")
		require.NoError(t, err)
		assert.Equal(t, "foo@example.com", e.String())
	})

	t.Run("development folds case only", func(t *testing.T) {
		SetEnvironment("development")
		e, err := NewEmail("Foo+bar@Example.com")
		require.NoError(t, err)
		assert.Equal(t, "foo+bar@example.com", e.String())

		again, err := NewEmail(e.String())
		require.NoError(t, err)
		assert.True(t, e.Equal(again))
	})

	t.Run("rejects invalid addresses", func(t *testing.T) {
		for _, raw := range []string{"", "not-an-email", "a@", "@b.com"} {
			_, err := NewEmail(raw)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeArgumentInvalid), raw)
		}
	})

	t.Run("restore keeps the stored address", func(t *testing.T) {
		SetEnvironment(EnvProduction)
		e, err := RestoreEmail("foo+bar@example.com")
		require.NoError(t, err)
		assert.Equal(t, "foo+bar@example.com", e.String())

		_, err = RestoreEmail("not-an-email")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeArgumentInvalid))
	})
}

func TestDocument(t *testing.T) {
	a, err := ParseDocument([]byte(`{ "b": 1, "a": {"y": true, "x": null} }`))
	require.NoError(t, err)
	assert.Equal(t, `{"a":{"x":null,"y":true},"b":1}`, a.String())

	b, err := NewDocument(map[string]any{"a": map[string]any{"y": true, "x": nil}, "b": 1})
	require.NoError(t, err)
	assert.True(t, a.Equal(b))

	empty, err := ParseDocument(nil)
	require.NoError(t, err)
	assert.True(t, empty.IsZero())
	assert.Equal(t, "{}", empty.String())

	_, err = ParseDocument([]byte(`[1,2]`))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeArgumentInvalid))

	var decoded struct {
		B int `json:"b"`
	}
	require.NoError(t, a.Decode(&decoded))
	assert.Equal(t, 1, decoded.B)
}

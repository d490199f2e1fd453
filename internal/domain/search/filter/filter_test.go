package filter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(f float64) *float64 { return &f }

type record struct {
	nums map[string]float64
	tags map[string][]string
}

func (r record) Number(key string) (float64, bool) {
	v, ok := r.nums[key]
	return v, ok
}

func (r record) Tags(key string) []string { return r.tags[key] }

// --- Range tests ---

func TestNewRangeFilter_Valid(t *testing.T) {
	tests := []struct {
		name             string
		gt, gte, lt, lte *float64
	}{
		{"gt only", floatPtr(1), nil, nil, nil},
		{"gte only", nil, floatPtr(0), nil, nil},
		{"lt only", nil, nil, floatPtr(10), nil},
		{"lte only", nil, nil, nil, floatPtr(100)},
		{"gte+lte", nil, floatPtr(0), nil, floatPtr(10)},
		{"gt+lt", floatPtr(0), nil, floatPtr(10), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRangeFilter(tt.gt, tt.gte, tt.lt, tt.lte)
			require.NoError(t, err)
			assert.Equal(t, tt.gt == nil, r.GT() == nil)
			assert.Equal(t, tt.gte == nil, r.GTE() == nil)
			assert.Equal(t, tt.lt == nil, r.LT() == nil)
			assert.Equal(t, tt.lte == nil, r.LTE() == nil)
		})
	}
}

func TestNewRangeFilter_Invalid(t *testing.T) {
	_, err := NewRangeFilter(nil, nil, nil, nil)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "at least one"))

	_, err = NewRangeFilter(floatPtr(1), floatPtr(1), nil, nil)
	require.Error(t, err)

	_, err = NewRangeFilter(nil, nil, floatPtr(1), floatPtr(1))
	require.Error(t, err)
}

func TestRange_Contains(t *testing.T) {
	r, err := NewRangeFilter(floatPtr(0), nil, nil, floatPtr(10))
	require.NoError(t, err)

	assert.False(t, r.Contains(0))
	assert.True(t, r.Contains(0.1))
	assert.True(t, r.Contains(10))
	assert.False(t, r.Contains(10.1))

	assert.True(t, AtLeast(8.5).Contains(8.5))
	assert.False(t, AtLeast(8.5).Contains(8.4))
	assert.True(t, AtMost(20000101).Contains(19991231))
}

func TestRange_Intersect(t *testing.T) {
	t.Run("overlapping", func(t *testing.T) {
		r := AtLeast(5).Intersect(AtMost(10))
		require.NotNil(t, r.GTE())
		require.NotNil(t, r.LTE())
		assert.InDelta(t, 5, *r.GTE(), 0)
		assert.InDelta(t, 10, *r.LTE(), 0)
		assert.False(t, r.IsEmpty())
	})

	t.Run("tighter lower wins", func(t *testing.T) {
		r := AtLeast(5).Intersect(AtLeast(7))
		require.NotNil(t, r.GTE())
		assert.InDelta(t, 7, *r.GTE(), 0)
		assert.Nil(t, r.LTE())
	})

	t.Run("exclusive wins on tie", func(t *testing.T) {
		gt, err := NewRangeFilter(floatPtr(5), nil, nil, nil)
		require.NoError(t, err)
		r := AtLeast(5).Intersect(gt)
		require.NotNil(t, r.GT())
		assert.Nil(t, r.GTE())
	})

	t.Run("disjoint is empty", func(t *testing.T) {
		r := AtLeast(20200101).Intersect(AtMost(20000101))
		require.NotNil(t, r.GTE())
		require.NotNil(t, r.LTE())
		assert.InDelta(t, 20200101, *r.GTE(), 0)
		assert.InDelta(t, 20000101, *r.LTE(), 0)
		assert.True(t, r.IsEmpty())
		assert.False(t, r.Contains(20100101))
	})

	t.Run("single point", func(t *testing.T) {
		assert.False(t, AtLeast(3).Intersect(AtMost(3)).IsEmpty())
		lt, err := NewRangeFilter(nil, nil, floatPtr(3), nil)
		require.NoError(t, err)
		assert.True(t, AtLeast(3).Intersect(lt).IsEmpty())
	})
}

// --- Condition tests ---

func TestNewMatch_Validation(t *testing.T) {
	_, err := NewMatch("", "x")
	require.Error(t, err)
	_, err = NewMatch("genre", "")
	require.Error(t, err)

	c, err := NewMatch("genre", "Drama")
	require.NoError(t, err)
	assert.True(t, c.IsMatch())
	assert.False(t, c.IsRange())
	assert.False(t, c.IsPrefix())
}

func TestNewPrefix_Validation(t *testing.T) {
	_, err := NewPrefix("", "x")
	require.Error(t, err)
	_, err = NewPrefix("genre", "")
	require.Error(t, err)

	c, err := NewPrefix("genre", "com")
	require.NoError(t, err)
	assert.True(t, c.IsPrefix())
	assert.Equal(t, "com", c.Prefix())
}

func TestCondition_Evaluate(t *testing.T) {
	rec := record{
		nums: map[string]float64{"vote_average": 8.7},
		tags: map[string][]string{"genre_names": {"Action", "Science Fiction"}},
	}

	prefix, _ := NewPrefix("genre_names", "science")
	assert.True(t, prefix.Evaluate(rec))

	notStart, _ := NewPrefix("genre_names", "fiction")
	assert.False(t, notStart.Evaluate(rec))

	match, _ := NewMatch("genre_names", "action")
	assert.True(t, match.Evaluate(rec))

	rng, _ := NewRange("vote_average", AtLeast(8.5))
	assert.True(t, rng.Evaluate(rec))

	missing, _ := NewRange("vote_count", AtLeast(500))
	assert.False(t, missing.Evaluate(rec))
}

// --- Expression tests ---

func TestNewExpression_TooMany(t *testing.T) {
	conds := make([]Condition, MaxConditions+1)
	for i := range conds {
		conds[i], _ = NewRange("f", AtLeast(float64(i)))
	}
	_, err := NewExpression(conds...)
	require.Error(t, err)
}

func TestExpression_AndIntersectsSameKey(t *testing.T) {
	recent, _ := NewRange("release_day", AtLeast(20200101))
	old, _ := NewRange("release_day", AtMost(20000101))
	top, _ := NewRange("vote_average", AtLeast(8.5))

	expr := Expression{}.And(top).And(recent).And(old)

	require.Len(t, expr.Must(), 2)
	assert.Equal(t, "vote_average", expr.Must()[0].Key())
	assert.Equal(t, "release_day", expr.Must()[1].Key())
	assert.True(t, expr.Unsatisfiable())
}

func TestExpression_AndDoesNotMutate(t *testing.T) {
	a, _ := NewRange("x", AtLeast(1))
	b, _ := NewRange("x", AtMost(5))

	base := Expression{}.And(a)
	_ = base.And(b)

	require.Len(t, base.Must(), 1)
	assert.Nil(t, base.Must()[0].Range().LTE())
}

func TestExpression_Evaluate(t *testing.T) {
	top, _ := NewRange("vote_average", AtLeast(8.5))
	popular, _ := NewRange("vote_count", AtLeast(500))
	expr := Expression{}.And(top).And(popular)

	assert.True(t, expr.Evaluate(record{nums: map[string]float64{"vote_average": 9, "vote_count": 900}}))
	assert.False(t, expr.Evaluate(record{nums: map[string]float64{"vote_average": 9, "vote_count": 100}}))
	assert.True(t, Expression{}.Evaluate(record{}))
	assert.True(t, Expression{}.IsEmpty())
}

func TestExpression_String(t *testing.T) {
	top, _ := NewRange("vote_average", AtLeast(8.5))
	g, _ := NewPrefix("genre_names", "comedy")
	expr := Expression{}.And(g).And(top)

	assert.Equal(t, "genre_names ^= comedy AND vote_average in [8.5, +inf]", expr.String())
}

package scheduler

import (
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"testing"
	"time"
	_ "time/tzdata"

	"warden/logger"
)

func TestMain(m *testing.M) {
	if err := logger.InitLogger("development"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func noop(ctx context.Context) error {
	return nil
}

func TestParseExpression(t *testing.T) {
	tests := []struct {
		expression string
		valid      bool
	}{
		{expression: "0 2 * * *", valid: true},
		{expression: "0 4 * * 0", valid: true},
		{expression: "*/15 * * * *", valid: true},
		{expression: "0 0 2 * * *", valid: false},
		{expression: "every day", valid: false},
		{expression: "", valid: false},
	}

	for _, test := range tests {
		t.Run(test.expression, func(t *testing.T) {
			err := ParseExpression(test.expression)
			if test.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestScheduler_Schedule(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	s, err := New(loc)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Shutdown()
	})

	ctx := context.Background()
	require.NoError(t, s.Schedule(ctx, Job{Name: "backup", Expression: "0 2 * * *", Run: noop}))
	require.NoError(t, s.Schedule(ctx, Job{Name: "smoke-test", Expression: "0 4 * * 0", Run: noop}))

	assert.ErrorIs(t, s.Schedule(ctx, Job{Name: "backup", Expression: "0 3 * * *", Run: noop}), ErrDuplicateJob)
	assert.Error(t, s.Schedule(ctx, Job{Name: "broken", Expression: "02:00", Run: noop}))

	s.Start()

	var next time.Time
	require.Eventually(t, func() bool {
		next, err = s.NextRun("backup")
		return err == nil && !next.IsZero()
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, 2, next.In(loc).Hour())
	assert.Equal(t, 0, next.In(loc).Minute())

	require.Eventually(t, func() bool {
		next, err = s.NextRun("smoke-test")
		return err == nil && !next.IsZero()
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, time.Sunday, next.In(loc).Weekday())
	assert.Equal(t, 4, next.In(loc).Hour())

	_, err = s.NextRun("missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestNew_RejectsUnnamedZone(t *testing.T) {
	_, err := New(time.FixedZone("UTC+2", 2*60*60))
	assert.Error(t, err)

	s, err := New(nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Shutdown()
	})
}

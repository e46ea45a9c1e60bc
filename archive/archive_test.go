package archive

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.seatdraw.dev/core/allocator"
	"go.seatdraw.dev/core/locker"
)

func TestRecordSeatsAndLockers(t *testing.T) {
	var ctx = context.Background()
	var s, err = Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	require.Equal(t, SQLite, s.Dialect)
	require.NoError(t, s.Init(ctx))
	require.NoError(t, s.Init(ctx)) // Idempotent.

	var placements = []allocator.Placement{
		{Name: "Kim", IDSuffix: "01", Room: "hall", Seat: "3", FirstChoice: true},
		{Name: "Lee", IDSuffix: "17", Room: "quiet", Seat: "1"},
	}
	var run = NewRun("seats", "normal", 1<<63+5, "abcd")
	run.Shortfall = 2
	require.NoError(t, s.RecordSeats(ctx, run, placements))

	var lockers = []locker.Assignment{{Placement: placements[0], Locker: locker.Locker{Location: "hall", Number: 12}}}
	require.NoError(t, s.RecordLockers(ctx, NewRun("lockers", "normal", 7, "ef01"), lockers))

	var seed string
	var assigned, shortfall int
	require.NoError(t, s.DB.QueryRowContext(ctx,
		`SELECT seed, assigned, shortfall FROM runs WHERE id = ?`, run.ID.String()).Scan(&seed, &assigned, &shortfall))
	require.Equal(t, "9223372036854775813", seed)
	require.Equal(t, 2, assigned)
	require.Equal(t, 2, shortfall)

	var name string
	var firstChoice bool
	require.NoError(t, s.DB.QueryRowContext(ctx,
		`SELECT name, first_choice FROM placements WHERE run_id = ? AND ordinal = 0`, run.ID.String()).Scan(&name, &firstChoice))
	require.Equal(t, "Kim", name)
	require.True(t, firstChoice)

	var number int
	require.NoError(t, s.DB.QueryRowContext(ctx, `SELECT locker_number FROM lockers`).Scan(&number))
	require.Equal(t, 12, number)

	// A failed insert rolls back its run.
	require.Error(t, s.RecordSeats(ctx, run, placements))
	var count int
	require.NoError(t, s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&count))
	require.Equal(t, 2, count)
}

func TestOpenSelectsDialect(t *testing.T) {
	var s, err = Open("postgres://user@localhost/seatdraw?sslmode=disable")
	require.NoError(t, err) // sql.Open doesn't connect.
	require.Equal(t, Postgres, s.Dialect)
	require.Equal(t, "INSERT INTO t (a, b) VALUES ($1, $2)", s.rebind("INSERT INTO t (a, b) VALUES (?, ?)"))
	require.NoError(t, s.Close())

	s, err = Open("sqlite3://:memory:")
	require.NoError(t, err)
	require.Equal(t, SQLite, s.Dialect)
	require.Equal(t, "VALUES (?, ?)", s.rebind("VALUES (?, ?)"))
	require.NoError(t, s.Close())
}

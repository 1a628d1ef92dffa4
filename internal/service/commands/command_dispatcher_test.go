package commands

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/lirio/internal/domain/models"
	farmrepo "github.com/mamadbah2/lirio/internal/repository/farm"
	farmsvc "github.com/mamadbah2/lirio/internal/service/farm"
	"github.com/mamadbah2/lirio/internal/storage"
)

type seqIDs struct{ n int }

func (s *seqIDs) NewID() string {
	s.n++
	return fmt.Sprintf("id-%d", s.n)
}

type stubReporting struct{ days []string }

func (s *stubReporting) StockSummary(context.Context) (string, error) { return "Feed stock: ok", nil }

func (s *stubReporting) DailySummary(_ context.Context, day string) (string, error) {
	s.days = append(s.days, day)
	return "Daily summary", nil
}

func newDispatcher(t *testing.T) (*Service, *farmsvc.Service, *stubReporting) {
	t.Helper()
	clock := func() time.Time { return time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC) }
	repos := farmrepo.New(storage.NewStore(storage.NewMemory()), nil,
		farmrepo.WithIDGenerator(&seqIDs{}), farmrepo.WithClock(clock))
	ds, err := farmrepo.DefaultDataset()
	require.NoError(t, err)
	_, err = repos.Initialize(context.Background(), ds)
	require.NoError(t, err)

	farm := farmsvc.NewService(repos, nil, nil)
	reporting := &stubReporting{}
	return NewService(farm, reporting, nil), farm, reporting
}

func TestHandleEggs(t *testing.T) {
	ctx := context.Background()
	d, farm, _ := newDispatcher(t)

	reply, err := d.HandleCommand(ctx, models.ParseCommand("/eggs Capoeira Galinhas B 40"), "Elton")
	require.NoError(t, err)
	assert.Equal(t, "Egg record saved for Capoeira Galinhas B on 2025-03-02: 40 eggs.", reply)

	eggs, err := farm.Repositories().Eggs.GetAll(ctx, 0)
	require.NoError(t, err)
	require.Len(t, eggs, 1)
	assert.Equal(t, "Elton", eggs[0].CreatedBy)

	_, err = d.HandleCommand(ctx, models.ParseCommand("/eggs galinhas many"), "Elton")
	require.ErrorIs(t, err, ErrInvalidArguments)

	_, err = d.HandleCommand(ctx, models.ParseCommand("/eggs Cavalos 3"), "Elton")
	require.ErrorIs(t, err, farmsvc.ErrPenNotFound)
}

func TestHandleMovements(t *testing.T) {
	ctx := context.Background()
	d, _, _ := newDispatcher(t)

	reply, err := d.HandleCommand(ctx, models.ParseCommand("/sale porcos 2"), "Elton")
	require.NoError(t, err)
	assert.Equal(t, "Sale of 2 recorded for Pocilga Principal. Now 10 animals.", reply)

	reply, err = d.HandleCommand(ctx, models.ParseCommand("/birth Patos 5"), "Elton")
	require.NoError(t, err)
	assert.Contains(t, reply, "Now 50 animals")

	_, err = d.HandleCommand(ctx, models.ParseCommand("/death porcos 100"), "Elton")
	require.ErrorIs(t, err, farmsvc.ErrInsufficientAnimals)

	_, err = d.HandleCommand(ctx, models.ParseCommand("/purchase porcos"), "Elton")
	require.ErrorIs(t, err, ErrInvalidArguments)
}

func TestHandleFeed(t *testing.T) {
	ctx := context.Background()
	d, _, _ := newDispatcher(t)

	reply, err := d.HandleCommand(ctx, models.ParseCommand("/feed add Porcos 50"), "Elton")
	require.NoError(t, err)
	assert.Equal(t, "Feed stock for Porcos is now 350.00 kg.", reply)

	reply, err = d.HandleCommand(ctx, models.ParseCommand("/feed use porcos"), "Elton")
	require.NoError(t, err)
	assert.Equal(t, "Consumption recorded. Porcos has 330.00 kg left.", reply)

	reply, err = d.HandleCommand(ctx, models.ParseCommand("/feed use Porcos 4.5"), "Elton")
	require.NoError(t, err)
	assert.Contains(t, reply, "325.50 kg")

	_, err = d.HandleCommand(ctx, models.ParseCommand("/feed add Porcos"), "Elton")
	require.ErrorIs(t, err, ErrInvalidArguments)

	_, err = d.HandleCommand(ctx, models.ParseCommand("/feed burn Porcos 1"), "Elton")
	require.ErrorIs(t, err, ErrInvalidArguments)

	_, err = d.HandleCommand(ctx, models.ParseCommand("/feed use Porcos 9999"), "Elton")
	require.ErrorIs(t, err, farmsvc.ErrInsufficientStock)
}

func TestHandleVegetables(t *testing.T) {
	ctx := context.Background()
	d, _, _ := newDispatcher(t)

	reply, err := d.HandleCommand(ctx, models.ParseCommand("/veg Couve tronchuda 12 40"), "Ilda")
	require.NoError(t, err)
	assert.Equal(t, "Harvest saved: 12.00 kg of Couve tronchuda worth 480.00 MZN.", reply)

	_, err = d.HandleCommand(ctx, models.ParseCommand("/veg Couve 12"), "Ilda")
	require.ErrorIs(t, err, ErrInvalidArguments)
}

func TestHandleReportsAndHelp(t *testing.T) {
	ctx := context.Background()
	d, _, reporting := newDispatcher(t)

	reply, err := d.HandleCommand(ctx, models.ParseCommand("/stock"), "Ilda")
	require.NoError(t, err)
	assert.Equal(t, "Feed stock: ok", reply)

	_, err = d.HandleCommand(ctx, models.ParseCommand("/summary 2025-03-01"), "Ilda")
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-03-01"}, reporting.days)

	reply, err = d.HandleCommand(ctx, models.ParseCommand("/help"), "Ilda")
	require.NoError(t, err)
	assert.Equal(t, HelpText, reply)

	_, err = d.HandleCommand(ctx, models.ParseCommand("/dance"), "Ilda")
	require.ErrorIs(t, err, ErrUnsupportedCommand)
}

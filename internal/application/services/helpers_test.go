package services_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/blooddonorconnect/backend/internal/adapters/directory"
	"github.com/zatekoja/blooddonorconnect/backend/internal/adapters/memory"
	"github.com/zatekoja/blooddonorconnect/backend/internal/application/services"
	"github.com/zatekoja/blooddonorconnect/backend/internal/domain/entities"
	"github.com/zatekoja/blooddonorconnect/backend/internal/domain/providers"
	"github.com/zatekoja/blooddonorconnect/backend/pkg/config"
	"github.com/zatekoja/blooddonorconnect/backend/pkg/geo"
)

type mockSnapshotStore struct {
	mock.Mock
}

func (m *mockSnapshotStore) Save(ctx context.Context, snapshot entities.Snapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func (m *mockSnapshotStore) Load(ctx context.Context) (entities.Snapshot, error) {
	args := m.Called(ctx)
	return args.Get(0).(entities.Snapshot), args.Error(1)
}

type mockEventBus struct {
	mock.Mock
}

func (m *mockEventBus) Publish(ctx context.Context, channel string, event *entities.EmergencyEvent) error {
	args := m.Called(ctx, channel, event)
	return args.Error(0)
}

func (m *mockEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.EmergencyEvent, error) {
	args := m.Called(ctx, channel)
	ch, _ := args.Get(0).(<-chan *entities.EmergencyEvent)
	return ch, args.Error(1)
}

func (m *mockEventBus) Close() error {
	return m.Called().Error(0)
}

type countingNotifier struct {
	calls atomic.Int32
}

func (n *countingNotifier) NotifyChanged() {
	n.calls.Add(1)
}

func defaultMatching() config.MatchingConfig {
	return config.MatchingConfig{
		DefaultRadiusKm:   10,
		EmergencyRadiusKm: 25,
		NearbyLimit:       5,
		EmergencyLimit:    3,
	}
}

// fixture wires the services over the bundled directory and empty
// in-memory stores.
type fixture struct {
	dir      *directory.Directory
	resolver *services.FacilityResolver
	registry *memory.DonorRegistry
	ledger   *memory.RequestLedger
	notifier *countingNotifier
	donors   *services.DonorService
	matching *services.MatchingService
}

func newFixture(t *testing.T, bus providers.EventBus) *fixture {
	t.Helper()
	dir, err := directory.Default()
	require.NoError(t, err)

	f := &fixture{
		dir:      dir,
		resolver: services.NewFacilityResolver(dir),
		registry: memory.NewDonorRegistry(),
		ledger:   memory.NewRequestLedger(),
		notifier: &countingNotifier{},
	}
	f.donors = services.NewDonorService(dir, f.resolver, f.registry, f.notifier, nil)

	f.matching = services.NewMatchingService(dir, f.resolver, f.registry, f.ledger, bus, f.notifier, nil, defaultMatching())
	return f
}

func (f *fixture) register(t *testing.T, name, bloodType, region, facility string) *entities.Donor {
	t.Helper()
	donor, err := f.donors.RegisterDonor(context.Background(), services.DonorInput{
		Name:          name,
		BloodType:     bloodType,
		Region:        region,
		FacilityQuery: facility,
		Phone:         "98" + name,
	})
	require.NoError(t, err)
	return donor
}

func twoApolloDirectory(t *testing.T) *directory.Directory {
	t.Helper()
	dir, err := directory.New([]string{"mumbai", "delhi"}, map[string][]entities.Facility{
		"mumbai": {
			{Name: "Tata Memorial Hospital", Location: geo.Point{Latitude: 19.0110, Longitude: 72.8569}, EmergencyContact: "022-2417-7000", SecondaryContact: "022-2417-7100"},
			{Name: "Apollo Hospital Mumbai", Location: geo.Point{Latitude: 19.0896, Longitude: 72.8656}, EmergencyContact: "022-2692-7777", SecondaryContact: "022-2692-7800"},
		},
		"delhi": {
			{Name: "AIIMS Delhi", Location: geo.Point{Latitude: 28.5672, Longitude: 77.2100}, EmergencyContact: "011-2658-8500", SecondaryContact: "011-2658-8700"},
			{Name: "Apollo Hospital Delhi", Location: geo.Point{Latitude: 28.5245, Longitude: 77.2721}, EmergencyContact: "011-2692-5858", SecondaryContact: "011-2692-5900"},
		},
	})
	require.NoError(t, err)
	return dir
}

func radius(km float64) *float64 {
	return &km
}

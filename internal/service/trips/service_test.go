package trips

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ahmed2300/triptracker/internal/domain/ride"
	"github.com/Ahmed2300/triptracker/internal/service/geo"
	"github.com/Ahmed2300/triptracker/internal/service/pricing"
	"github.com/Ahmed2300/triptracker/internal/service/tracking"
	"github.com/Ahmed2300/triptracker/pkg/logger"
)

// oneMileNorthDeg is the latitude delta spanning one mile of great-circle
// distance, so test coordinates can be laid out in mile units.
const oneMileNorthDeg = 180.0 / (math.Pi * 3959.0)

var (
	testPickup      = ride.Location{Latitude: 30.0444, Longitude: 31.2357}
	testDestination = ride.Location{Latitude: 30.0444 + 2*oneMileNorthDeg, Longitude: 31.2357}
)

func milesNorthOfPickup(miles float64) ride.Location {
	return ride.Location{
		Latitude:  testPickup.Latitude + miles*oneMileNorthDeg,
		Longitude: testPickup.Longitude,
	}
}

// memRepo is an in-memory ride.Repository with the same conditional-write
// contract the SQL implementation has.
type memRepo struct {
	mu    sync.Mutex
	rides map[uuid.UUID]*ride.Request
}

func newMemRepo() *memRepo {
	return &memRepo{rides: make(map[uuid.UUID]*ride.Request)}
}

func cloneRide(r *ride.Request) *ride.Request {
	c := *r
	if r.StartTripLocation != nil {
		loc := *r.StartTripLocation
		c.StartTripLocation = &loc
	}
	if r.CurrentDriverLocation != nil {
		loc := *r.CurrentDriverLocation
		c.CurrentDriverLocation = &loc
	}
	return &c
}

func (m *memRepo) Create(ctx context.Context, r *ride.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[r.ID] = cloneRide(r)
	return nil
}

func (m *memRepo) GetByID(ctx context.Context, id uuid.UUID) (*ride.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rides[id]
	if !ok {
		return nil, ride.ErrNotFound
	}
	return cloneRide(r), nil
}

func (m *memRepo) ListPending(ctx context.Context) ([]*ride.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*ride.Request
	for _, r := range m.rides {
		if r.Status == ride.StatusPending {
			out = append(out, cloneRide(r))
		}
	}
	return out, nil
}

func (m *memRepo) Claim(ctx context.Context, id uuid.UUID, driverID, driverName string, acceptTime int64) (*ride.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rides[id]
	if !ok {
		return nil, ride.ErrNotFound
	}
	if !r.CanAccept() {
		return nil, ride.ErrAlreadyClaimed
	}
	r.Status = ride.StatusAccepted
	r.DriverID = driverID
	r.DriverName = driverName
	r.AcceptTime = acceptTime
	return cloneRide(r), nil
}

func (m *memRepo) Release(ctx context.Context, id uuid.UUID, driverID string) (*ride.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rides[id]
	if !ok {
		return nil, ride.ErrNotFound
	}
	if !r.IsAssignedTo(driverID) {
		return nil, ride.ErrWrongDriver
	}
	if !r.CanCancel() {
		return nil, ride.ErrInvalidStatus
	}
	r.Status = ride.StatusPending
	r.DriverID = ""
	r.DriverName = ""
	r.AcceptTime = 0
	return cloneRide(r), nil
}

func (m *memRepo) Start(ctx context.Context, id uuid.UUID, driverID string, loc ride.Location, startTime int64) (*ride.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rides[id]
	if !ok {
		return nil, ride.ErrNotFound
	}
	if !r.IsAssignedTo(driverID) {
		return nil, ride.ErrWrongDriver
	}
	if !r.CanStart() {
		return nil, ride.ErrInvalidStatus
	}
	r.Status = ride.StatusStarted
	r.StartTime = startTime
	r.StartTripLocation = &ride.Location{Latitude: loc.Latitude, Longitude: loc.Longitude}
	r.CurrentDriverLocation = &ride.Location{Latitude: loc.Latitude, Longitude: loc.Longitude}
	r.CalculatedMileage = 0
	return cloneRide(r), nil
}

func (m *memRepo) UpdateProgress(ctx context.Context, id uuid.UUID, loc ride.Location, mileage float64) (*ride.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rides[id]
	if !ok {
		return nil, ride.ErrNotFound
	}
	if !r.CanComplete() {
		return nil, ride.ErrInvalidStatus
	}
	r.CurrentDriverLocation = &ride.Location{Latitude: loc.Latitude, Longitude: loc.Longitude}
	r.CalculatedMileage = mileage
	return cloneRide(r), nil
}

func (m *memRepo) Complete(ctx context.Context, id uuid.UUID, driverID string, loc ride.Location, mileage float64, endTime int64) (*ride.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rides[id]
	if !ok {
		return nil, ride.ErrNotFound
	}
	if !r.IsAssignedTo(driverID) {
		return nil, ride.ErrWrongDriver
	}
	if !r.CanComplete() {
		return nil, ride.ErrInvalidStatus
	}
	r.Status = ride.StatusCompleted
	r.EndTime = endTime
	r.CurrentDriverLocation = &ride.Location{Latitude: loc.Latitude, Longitude: loc.Longitude}
	r.CalculatedMileage = mileage
	return cloneRide(r), nil
}

func (m *memRepo) GetActiveByDriver(ctx context.Context, driverID string) (*ride.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rides {
		if r.IsActive() && r.DriverID == driverID {
			return cloneRide(r), nil
		}
	}
	return nil, ride.ErrNotFound
}

func (m *memRepo) GetActiveByCustomer(ctx context.Context, customerID string) (*ride.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rides {
		if r.CustomerID == customerID && r.Status != ride.StatusCompleted {
			return cloneRide(r), nil
		}
	}
	return nil, ride.ErrNotFound
}

// recordingNotifier captures every published event for assertions
type recordingNotifier struct {
	mu        sync.Mutex
	announced []uuid.UUID
	withdrawn []uuid.UUID
	events    []string
}

func (n *recordingNotifier) RideAnnounced(r *ride.Request) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.announced = append(n.announced, r.ID)
}

func (n *recordingNotifier) RideWithdrawn(r *ride.Request) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.withdrawn = append(n.withdrawn, r.ID)
}

func (n *recordingNotifier) RideUpdated(event string, r *ride.Request) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) announcedCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.announced)
}

func (n *recordingNotifier) hasEvent(event string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, e := range n.events {
		if e == event {
			return true
		}
	}
	return false
}

func newTestService(t *testing.T) (*Service, *memRepo, *recordingNotifier) {
	t.Helper()

	log, err := logger.New(logger.Config{Level: "error", Format: "console"})
	require.NoError(t, err)

	repo := newMemRepo()
	notifier := &recordingNotifier{}
	tracker := tracking.NewTracker(10*time.Millisecond, log)
	t.Cleanup(tracker.Shutdown)

	calc := pricing.NewCalculator(pricing.Config{BaseFare: 2.50, PerMileRate: 1.75})

	svc := NewService(repo, nil, calc, tracker, notifier, nil, log, Config{
		ProximityRadiusMiles: 0.2,
		GeohashPrecision:     5,
		// one simulated mile per 10ms tick, so trips finish fast
		SimulatedSpeedMPH: 360000,
	})
	return svc, repo, notifier
}

func requestTestRide(t *testing.T, svc *Service) *ride.Request {
	t.Helper()
	r, err := svc.RequestRide(context.Background(), RequestInput{
		CustomerID:          "customer-1",
		CustomerName:        "Sara",
		PickupLocation:      testPickup,
		DestinationLocation: testDestination,
		PickupAddress:       "Tahrir Square",
		DestinationAddress:  "Ramses Station",
	})
	require.NoError(t, err)
	return r
}

func acceptTestRide(t *testing.T, svc *Service, id uuid.UUID, driverID string) *ride.Request {
	t.Helper()
	r, err := svc.Accept(context.Background(), id, driverID, "Omar")
	require.NoError(t, err)
	return r
}

func startTestTrip(t *testing.T, svc *Service, id uuid.UUID, driverID string) *ride.Request {
	t.Helper()
	r, err := svc.StartTrip(context.Background(), id, driverID, testPickup, false)
	require.NoError(t, err)
	return r
}

func TestRequestRide(t *testing.T) {
	svc, _, notifier := newTestService(t)

	r := requestTestRide(t, svc)

	assert.Equal(t, ride.StatusPending, r.Status)
	assert.Equal(t, "customer-1", r.CustomerID)
	assert.NotEqual(t, uuid.Nil, r.ID)
	assert.Positive(t, r.RequestTime)
	assert.Len(t, r.PickupGeohash, 5)

	// two miles at 2.50 base + 1.75/mi
	assert.InDelta(t, 6.00, r.EstimatedPrice, 0.01)

	assert.Equal(t, 1, notifier.announcedCount())
}

func TestRequestRide_RejectsBadCoordinates(t *testing.T) {
	svc, _, notifier := newTestService(t)

	_, err := svc.RequestRide(context.Background(), RequestInput{
		CustomerID:          "customer-1",
		PickupLocation:      ride.Location{Latitude: 91, Longitude: 0},
		DestinationLocation: testDestination,
	})

	assert.ErrorIs(t, err, ErrBadCoordinates)
	assert.Zero(t, notifier.announcedCount())
}

func TestAccept(t *testing.T) {
	svc, _, notifier := newTestService(t)
	r := requestTestRide(t, svc)

	accepted := acceptTestRide(t, svc, r.ID, "driver-1")

	assert.Equal(t, ride.StatusAccepted, accepted.Status)
	assert.Equal(t, "driver-1", accepted.DriverID)
	assert.Equal(t, "Omar", accepted.DriverName)
	assert.Positive(t, accepted.AcceptTime)
	assert.True(t, notifier.hasEvent("ride_accepted"))
}

func TestAccept_SecondDriverLoses(t *testing.T) {
	svc, _, _ := newTestService(t)
	r := requestTestRide(t, svc)

	acceptTestRide(t, svc, r.ID, "driver-1")

	_, err := svc.Accept(context.Background(), r.ID, "driver-2", "Nour")
	assert.ErrorIs(t, err, ride.ErrAlreadyClaimed)

	// the winner keeps the ride
	got, err := svc.GetRide(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, "driver-1", got.DriverID)
}

func TestAccept_BusyDriverRejected(t *testing.T) {
	svc, _, _ := newTestService(t)
	first := requestTestRide(t, svc)
	acceptTestRide(t, svc, first.ID, "driver-1")

	second, err := svc.RequestRide(context.Background(), RequestInput{
		CustomerID:          "customer-2",
		PickupLocation:      testPickup,
		DestinationLocation: testDestination,
	})
	require.NoError(t, err)

	_, err = svc.Accept(context.Background(), second.ID, "driver-1", "Omar")
	assert.ErrorIs(t, err, ride.ErrDriverBusy)
}

func TestAccept_UnknownRide(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Accept(context.Background(), uuid.New(), "driver-1", "Omar")
	assert.ErrorIs(t, err, ride.ErrNotFound)
}

func TestStartTrip(t *testing.T) {
	svc, _, notifier := newTestService(t)
	r := requestTestRide(t, svc)
	acceptTestRide(t, svc, r.ID, "driver-1")

	started := startTestTrip(t, svc, r.ID, "driver-1")

	assert.Equal(t, ride.StatusStarted, started.Status)
	assert.Positive(t, started.StartTime)
	require.NotNil(t, started.StartTripLocation)
	assert.Equal(t, testPickup, *started.StartTripLocation)
	assert.True(t, notifier.hasEvent("trip_started"))
}

func TestStartTrip_RejectedOutsidePickupRadius(t *testing.T) {
	svc, _, _ := newTestService(t)
	r := requestTestRide(t, svc)
	acceptTestRide(t, svc, r.ID, "driver-1")

	farAway := milesNorthOfPickup(0.3)
	_, err := svc.StartTrip(context.Background(), r.ID, "driver-1", farAway, false)
	assert.ErrorIs(t, err, ErrTooFarFromPickup)

	// the rejection must not have touched the record
	got, err := svc.GetRide(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, ride.StatusAccepted, got.Status)
	assert.Nil(t, got.StartTripLocation)
}

func TestStartTrip_AllowedInsidePickupRadius(t *testing.T) {
	svc, _, _ := newTestService(t)
	r := requestTestRide(t, svc)
	acceptTestRide(t, svc, r.ID, "driver-1")

	nearby := milesNorthOfPickup(0.15)
	started, err := svc.StartTrip(context.Background(), r.ID, "driver-1", nearby, false)
	require.NoError(t, err)
	assert.Equal(t, ride.StatusStarted, started.Status)
}

func TestStartTrip_WrongDriver(t *testing.T) {
	svc, _, _ := newTestService(t)
	r := requestTestRide(t, svc)
	acceptTestRide(t, svc, r.ID, "driver-1")

	_, err := svc.StartTrip(context.Background(), r.ID, "driver-2", testPickup, false)
	assert.ErrorIs(t, err, ride.ErrWrongDriver)
}

func TestStartTrip_InvalidFromStarted(t *testing.T) {
	svc, _, _ := newTestService(t)
	r := requestTestRide(t, svc)
	acceptTestRide(t, svc, r.ID, "driver-1")
	startTestTrip(t, svc, r.ID, "driver-1")

	_, err := svc.StartTrip(context.Background(), r.ID, "driver-1", testPickup, false)
	assert.ErrorIs(t, err, ride.ErrInvalidStatus)
}

func TestUpdateLocation_MileageIsDistanceFromStart(t *testing.T) {
	svc, _, notifier := newTestService(t)
	r := requestTestRide(t, svc)
	acceptTestRide(t, svc, r.ID, "driver-1")
	startTestTrip(t, svc, r.ID, "driver-1")

	oneMileOut := milesNorthOfPickup(1)
	updated, err := svc.UpdateLocation(context.Background(), r.ID, "driver-1", oneMileOut)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, updated.CalculatedMileage, 1e-6)
	assert.Equal(t, oneMileOut, *updated.CurrentDriverLocation)
	assert.True(t, notifier.hasEvent("driver_location"))

	// mileage tracks the straight line from the origin, so doubling back
	// shrinks it rather than accumulating path length
	halfMileOut := milesNorthOfPickup(0.5)
	updated, err = svc.UpdateLocation(context.Background(), r.ID, "driver-1", halfMileOut)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, updated.CalculatedMileage, 1e-6)
}

func TestUpdateLocation_RequiresStartedTrip(t *testing.T) {
	svc, _, _ := newTestService(t)
	r := requestTestRide(t, svc)
	acceptTestRide(t, svc, r.ID, "driver-1")

	_, err := svc.UpdateLocation(context.Background(), r.ID, "driver-1", testPickup)
	assert.ErrorIs(t, err, ride.ErrNotStarted)
}

func TestEndTrip(t *testing.T) {
	svc, _, notifier := newTestService(t)
	r := requestTestRide(t, svc)
	acceptTestRide(t, svc, r.ID, "driver-1")
	startTestTrip(t, svc, r.ID, "driver-1")

	completed, err := svc.EndTrip(context.Background(), r.ID, "driver-1", testDestination)
	require.NoError(t, err)

	assert.Equal(t, ride.StatusCompleted, completed.Status)
	assert.Positive(t, completed.EndTime)
	assert.InDelta(t, 2.0, completed.CalculatedMileage, 1e-6)
	assert.True(t, notifier.hasEvent("trip_completed"))
}

func TestEndTrip_RejectedOutsideDestinationRadius(t *testing.T) {
	svc, _, _ := newTestService(t)
	r := requestTestRide(t, svc)
	acceptTestRide(t, svc, r.ID, "driver-1")
	startTestTrip(t, svc, r.ID, "driver-1")

	// half a mile short of the destination
	_, err := svc.EndTrip(context.Background(), r.ID, "driver-1", milesNorthOfPickup(1.5))
	assert.ErrorIs(t, err, ErrTooFarFromDestination)

	got, err := svc.GetRide(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, ride.StatusStarted, got.Status)
}

func TestEndTrip_RequiresStartedTrip(t *testing.T) {
	svc, _, _ := newTestService(t)
	r := requestTestRide(t, svc)
	acceptTestRide(t, svc, r.ID, "driver-1")

	_, err := svc.EndTrip(context.Background(), r.ID, "driver-1", testDestination)
	assert.ErrorIs(t, err, ride.ErrInvalidStatus)
}

func TestEndTrip_FreesTheDriver(t *testing.T) {
	svc, _, _ := newTestService(t)
	r := requestTestRide(t, svc)
	acceptTestRide(t, svc, r.ID, "driver-1")
	startTestTrip(t, svc, r.ID, "driver-1")

	_, err := svc.EndTrip(context.Background(), r.ID, "driver-1", testDestination)
	require.NoError(t, err)

	next, err := svc.RequestRide(context.Background(), RequestInput{
		CustomerID:          "customer-2",
		PickupLocation:      testPickup,
		DestinationLocation: testDestination,
	})
	require.NoError(t, err)

	_, err = svc.Accept(context.Background(), next.ID, "driver-1", "Omar")
	assert.NoError(t, err)
}

func TestCancel_ReturnsRideToPendingPool(t *testing.T) {
	svc, _, notifier := newTestService(t)
	r := requestTestRide(t, svc)
	acceptTestRide(t, svc, r.ID, "driver-1")

	released, err := svc.Cancel(context.Background(), r.ID, "driver-1")
	require.NoError(t, err)

	assert.Equal(t, ride.StatusPending, released.Status)
	assert.Empty(t, released.DriverID)
	assert.Empty(t, released.DriverName)
	assert.True(t, notifier.hasEvent("ride_cancelled"))
	assert.Equal(t, 2, notifier.announcedCount(), "re-pending rides go back on the driver feed")

	// another driver can pick it up again
	_, err = svc.Accept(context.Background(), r.ID, "driver-2", "Nour")
	assert.NoError(t, err)
}

func TestCancel_OnlyBeforeTripStarts(t *testing.T) {
	svc, _, _ := newTestService(t)
	r := requestTestRide(t, svc)
	acceptTestRide(t, svc, r.ID, "driver-1")
	startTestTrip(t, svc, r.ID, "driver-1")

	_, err := svc.Cancel(context.Background(), r.ID, "driver-1")
	assert.ErrorIs(t, err, ride.ErrInvalidStatus)
}

func TestCancel_WrongDriver(t *testing.T) {
	svc, _, _ := newTestService(t)
	r := requestTestRide(t, svc)
	acceptTestRide(t, svc, r.ID, "driver-1")

	_, err := svc.Cancel(context.Background(), r.ID, "driver-2")
	assert.ErrorIs(t, err, ride.ErrWrongDriver)
}

func TestPendingRides_FallsBackWithoutRedis(t *testing.T) {
	svc, _, _ := newTestService(t)
	requestTestRide(t, svc)
	second := requestTestRide(t, svc)
	acceptTestRide(t, svc, second.ID, "driver-1")

	pending, err := svc.PendingRides(context.Background(), &testPickup, 5)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, ride.StatusPending, pending[0].Status)
}

func TestStartTrip_ProximityBoundaryIsNonStrict(t *testing.T) {
	log, err := logger.New(logger.Config{Level: "error", Format: "console"})
	require.NoError(t, err)

	// pin the gate radius to the measured distance of the test point, so
	// the driver sits exactly on the boundary
	atBoundary := milesNorthOfPickup(0.2)
	radius := geo.DistanceMiles(testPickup, atBoundary)

	calc := pricing.NewCalculator(pricing.Config{BaseFare: 2.50, PerMileRate: 1.75})
	svc := NewService(newMemRepo(), nil, calc, nil, NopNotifier{}, nil, log, Config{
		ProximityRadiusMiles: radius,
		GeohashPrecision:     5,
		SimulatedSpeedMPH:    30,
	})

	r := requestTestRide(t, svc)
	acceptTestRide(t, svc, r.ID, "driver-1")

	started, err := svc.StartTrip(context.Background(), r.ID, "driver-1", atBoundary, false)
	require.NoError(t, err, "a driver at exactly the radius passes the gate")
	assert.Equal(t, ride.StatusStarted, started.Status)

	second, err := svc.RequestRide(context.Background(), RequestInput{
		CustomerID:          "customer-2",
		PickupLocation:      testPickup,
		DestinationLocation: testDestination,
	})
	require.NoError(t, err)
	acceptTestRide(t, svc, second.ID, "driver-2")

	justBeyond := ride.Location{
		Latitude:  testPickup.Latitude + 0.2*(1+1e-6)*oneMileNorthDeg,
		Longitude: testPickup.Longitude,
	}
	_, err = svc.StartTrip(context.Background(), second.ID, "driver-2", justBeyond, false)
	assert.ErrorIs(t, err, ErrTooFarFromPickup)
}

func TestActiveLookups(t *testing.T) {
	svc, _, _ := newTestService(t)
	r := requestTestRide(t, svc)
	acceptTestRide(t, svc, r.ID, "driver-1")

	byDriver, err := svc.ActiveForDriver(context.Background(), "driver-1")
	require.NoError(t, err)
	assert.Equal(t, r.ID, byDriver.ID)

	byCustomer, err := svc.ActiveForCustomer(context.Background(), "customer-1")
	require.NoError(t, err)
	assert.Equal(t, r.ID, byCustomer.ID)

	_, err = svc.ActiveForDriver(context.Background(), "driver-9")
	assert.ErrorIs(t, err, ride.ErrNotFound)
}

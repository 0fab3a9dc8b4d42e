package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"pickup-backend/internal/notification"
	"pickup-backend/internal/pickup/domain"
	"pickup-backend/internal/pickup/repository"
	"pickup-backend/pkg/fcm"
)

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type sentPush struct {
	recipientID string
	data        fcm.NotificationData
}

type sentNote struct {
	to  notification.Recipient
	msg notification.Message
}

// recordingNotifier stands in for the notification service. A push counts
// as delivered when the recipient has a token.
type recordingNotifier struct {
	mu     sync.Mutex
	pushes []sentPush
	notes  []sentNote
}

func (n *recordingNotifier) Push(_ context.Context, recipientID, token string, data fcm.NotificationData) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if token == "" {
		return false
	}
	n.pushes = append(n.pushes, sentPush{recipientID: recipientID, data: data})
	return true
}

func (n *recordingNotifier) Notify(ctx context.Context, to notification.Recipient, m notification.Message) notification.Outcome {
	pushed := n.Push(ctx, to.ID, to.Token, m.Push)
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, sentNote{to: to, msg: m})
	return notification.Outcome{Pushed: pushed, Recorded: true}
}

func (n *recordingNotifier) pushesTo(id string) []sentPush {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []sentPush
	for _, p := range n.pushes {
		if p.recipientID == id {
			out = append(out, p)
		}
	}
	return out
}

func (n *recordingNotifier) pushCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.pushes)
}

// firstPicker always picks the first candidate
var firstPicker = PickerFunc(func(c []*domain.Collector) *domain.Collector { return c[0] })

// lastPicker always picks the last candidate
var lastPicker = PickerFunc(func(c []*domain.Collector) *domain.Collector { return c[len(c)-1] })

type fixture struct {
	store    *repository.MemoryStore
	notifier *recordingNotifier
	deps     Deps
}

func newFixture(picker Picker) *fixture {
	store := repository.NewMemoryStore()
	n := &recordingNotifier{}
	return &fixture{
		store:    store,
		notifier: n,
		deps: Deps{
			Requests:   store.Requests(),
			Collectors: store.Collectors(),
			Users:      store.Users(),
			Notifier:   n,
			Picker:     picker,
			Now:        func() time.Time { return testNow },
		},
	}
}

func (f *fixture) collector(id, town string, active bool) domain.Collector {
	c := domain.Collector{ID: id, Name: "Collector " + id, Town: town, IsActive: active, FCMToken: "tok-" + id}
	f.store.PutCollector(c)
	return c
}

func (f *fixture) request(id, town string, mutate ...func(*domain.Request)) domain.Request {
	r := domain.Request{
		ID:         id,
		Status:     domain.StatusPending,
		UserID:     "user-" + id,
		UserName:   "User " + id,
		UserTown:   town,
		PickupDate: testNow.Add(24 * time.Hour),
		CreatedAt:  testNow.Add(-time.Hour),
	}
	for _, m := range mutate {
		m(&r)
	}
	f.store.PutRequest(r)
	return r
}

func (f *fixture) get(id string) *domain.Request {
	r, err := f.store.Requests().FindByID(context.Background(), id)
	if err != nil {
		panic(err)
	}
	return r
}

func heldBy(collectorID string) func(*domain.Request) {
	return func(r *domain.Request) {
		r.CollectorID = collectorID
		r.CollectorName = "Collector " + collectorID
		at := testNow.Add(-2 * time.Hour)
		r.AssignedAt = &at
	}
}

func withStatus(s domain.RequestStatus) func(*domain.Request) {
	return func(r *domain.Request) { r.Status = s }
}

func pickupAt(t time.Time) func(*domain.Request) {
	return func(r *domain.Request) { r.PickupDate = t }
}

func createdAt(t time.Time) func(*domain.Request) {
	return func(r *domain.Request) { r.CreatedAt = t }
}

// failingRequests rejects any batch that touches one of the listed ids
type failingRequests struct {
	repository.RequestRepository
	reject map[string]bool
}

func (f failingRequests) ApplyPatches(ctx context.Context, patches []repository.RequestPatch) error {
	for _, p := range patches {
		if f.reject[p.RequestID] {
			return errWriteRejected
		}
	}
	return f.RequestRepository.ApplyPatches(ctx, patches)
}

var errWriteRejected = errors.New("write rejected")

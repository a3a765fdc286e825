package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joakmannn/SocialMed/internal/core/contracts"
	"github.com/joakmannn/SocialMed/internal/core/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSessionCtx(userID string) context.Context {
	return WithSession(context.Background(), &domain.Session{
		UserID:    userID,
		Username:  userID,
		TokenID:   uuid.NewString(),
		CreatedAt: time.Now(),
	})
}

// memMessageRepo is an in-memory MessageRepository that reproduces the
// store's ordering contract: created_at descending, ties by id ascending.
type memMessageRepo struct {
	mu         sync.Mutex
	msgs       []domain.Message
	failInsert error
	failList   error
}

func (r *memMessageRepo) sortedDesc(msgs []domain.Message) []domain.Message {
	sort.Slice(msgs, func(i, j int) bool {
		return displayBefore(msgs[i], msgs[j])
	})
	return msgs
}

func (r *memMessageRepo) ListBetween(ctx context.Context, userID, otherID string) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failList != nil {
		return nil, r.failList
	}
	var out []domain.Message
	for _, m := range r.msgs {
		if m.Between(userID, otherID) {
			out = append(out, m)
		}
	}
	return r.sortedDesc(out), nil
}

func (r *memMessageRepo) ListForUser(ctx context.Context, userID string) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failList != nil {
		return nil, r.failList
	}
	var out []domain.Message
	for _, m := range r.msgs {
		if m.SenderID == userID || m.ReceiverID == userID {
			out = append(out, m)
		}
	}
	return r.sortedDesc(out), nil
}

func (r *memMessageRepo) ListIncoming(ctx context.Context, userID string, limit int) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Message
	for _, m := range r.msgs {
		if m.ReceiverID == userID {
			out = append(out, m)
		}
	}
	out = r.sortedDesc(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memMessageRepo) Insert(ctx context.Context, m *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failInsert != nil {
		return r.failInsert
	}
	r.msgs = append(r.msgs, *m)
	return nil
}

func (r *memMessageRepo) MarkRead(ctx context.Context, receiverID, senderID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	now := time.Now()
	for i := range r.msgs {
		m := &r.msgs[i]
		if m.ReceiverID == receiverID && m.SenderID == senderID && m.ReadAt == nil {
			t := now
			m.ReadAt = &t
			n++
		}
	}
	return n, nil
}

func (r *memMessageRepo) MarkReadByID(ctx context.Context, receiverID string, id uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.msgs {
		m := &r.msgs[i]
		if m.ID == id && m.ReceiverID == receiverID && m.ReadAt == nil {
			t := time.Now()
			m.ReadAt = &t
			return 1, nil
		}
	}
	return 0, nil
}

func (r *memMessageRepo) CountUnread(ctx context.Context, receiverID string) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	for _, m := range r.msgs {
		if m.ReceiverID == receiverID && m.ReadAt == nil {
			counts[m.SenderID]++
		}
	}
	return counts, nil
}

// memFeed fans published rows out to every open subscription, like the
// table-wide pub/sub channel does.
type memFeed struct {
	mu   sync.Mutex
	subs []*memSub
}

type memSub struct {
	ch   chan domain.Message
	once sync.Once
}

func (s *memSub) Events() <-chan domain.Message { return s.ch }

func (s *memSub) Close() {
	s.once.Do(func() { close(s.ch) })
}

func (f *memFeed) Publish(ctx context.Context, msg domain.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.subs {
		s.ch <- msg
	}
	return nil
}

func (f *memFeed) Subscribe(ctx context.Context) (contracts.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := &memSub{ch: make(chan domain.Message, 64)}
	f.subs = append(f.subs, s)
	return s, nil
}

type memQueue struct {
	mu       sync.Mutex
	payloads [][]byte
	acked    []string
	deleted  []string
}

func (q *memQueue) PublishToStream(ctx context.Context, payload []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.payloads = append(q.payloads, payload)
	return nil
}

func (q *memQueue) SubscribeToStream(ctx context.Context, group string, handler func(ctx context.Context, messageID string, data []byte) error) error {
	return nil
}

func (q *memQueue) AcknowledgeMessage(ctx context.Context, group, msgID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.acked = append(q.acked, msgID)
	return nil
}

func (q *memQueue) DeleteMessage(ctx context.Context, msgID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.deleted = append(q.deleted, msgID)
	return nil
}

type passTx struct{}

func (passTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memBadges struct {
	mu          sync.Mutex
	counts      map[string]map[string]int64
	invalidated []string
}

func newMemBadges() *memBadges {
	return &memBadges{counts: make(map[string]map[string]int64)}
}

func (b *memBadges) SetCounts(ctx context.Context, userID string, counts map[string]int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.counts[userID] = counts
	return nil
}

func (b *memBadges) GetCounts(ctx context.Context, userID string) (map[string]int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.counts[userID], nil
}

func (b *memBadges) Invalidate(ctx context.Context, userID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.counts, userID)
	b.invalidated = append(b.invalidated, userID)
	return nil
}

type sentEvent struct {
	userID string
	v      any
}

type memRegistry struct {
	mu   sync.Mutex
	sent []sentEvent
}

func (r *memRegistry) Register(c contracts.Client)   {}
func (r *memRegistry) Unregister(c contracts.Client) {}
func (r *memRegistry) ActiveUsers() []string         { return nil }

func (r *memRegistry) SendToUser(ctx context.Context, userID string, v any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentEvent{userID: userID, v: v})
}

type memSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: make(map[string]*domain.Session)}
}

func (s *memSessionStore) Save(ctx context.Context, sess *domain.Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.TokenID] = sess
	return nil
}

func (s *memSessionStore) Get(ctx context.Context, tokenID string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[tokenID], nil
}

func (s *memSessionStore) Delete(ctx context.Context, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, tokenID)
	return nil
}

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*domain.User)}
}

func (r *memUserRepo) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) GetUsersByID(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]*domain.User)
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			cp := *u
			out[id] = &cp
		}
	}
	return out, nil
}

func (r *memUserRepo) CreateUser(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return domain.ErrEmailTaken
		}
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memUserRepo) UpsertExternal(ctx context.Context, u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			existing.Username = u.Username
			existing.AvatarURL = u.AvatarURL
			cp := *existing
			return &cp, nil
		}
	}
	cp := *u
	r.users[u.ID] = &cp
	out := cp
	return &out, nil
}

func (r *memUserRepo) UpdateProfile(ctx context.Context, id string, patch domain.ProfilePatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	if patch.Username != nil {
		u.Username = *patch.Username
	}
	if patch.Age != nil {
		u.Age = patch.Age
	}
	if patch.Gender != nil {
		u.Gender = *patch.Gender
	}
	if patch.AvatarURL != nil {
		u.AvatarURL = *patch.AvatarURL
	}
	return nil
}

type stubIdentity struct {
	identity *domain.ExternalIdentity
	err      error
}

func (s *stubIdentity) VerifyIDToken(ctx context.Context, idToken string) (*domain.ExternalIdentity, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.identity, nil
}

var errStoreDown = errors.New("store down")

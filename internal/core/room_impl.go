package core

import (
	"slices"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/dkeye/Relay/internal/domain"
	"github.com/rs/zerolog/log"
)

type roomEntry struct {
	session MemberSession
	member  *domain.Member
}

// roomImpl is a threadsafe in-memory room.
// It never closes adapter-owned resources and never blocks on a slow member:
// delivery is TrySend, failures are reported in PublishResult.
type roomImpl struct {
	room domain.Room
	opts RoomOptions

	mu      sync.Mutex
	bySID   map[SessionID]*roomEntry
	order   []SessionID // join order
	history *History
}

func NewRoomService(room domain.Room, opts RoomOptions) RoomService {
	opts = opts.withDefaults()
	return &roomImpl{
		room:    room,
		opts:    opts,
		bySID:   make(map[SessionID]*roomEntry),
		history: NewHistory(opts.HistoryCapacity),
	}
}

func (r *roomImpl) Room() domain.Room { return r.room }

func (r *roomImpl) MemberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bySID)
}

func (r *roomImpl) HasMember(sid SessionID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.bySID[sid]
	return ok
}

func (r *roomImpl) MembersSnapshot() []domain.Identity {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked("")
}

func (r *roomImpl) History() []domain.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.history.Snapshot()
}

func (r *roomImpl) AddMember(ms MemberSession) (PublishResult, bool) {
	sid := ms.ID()
	r.mu.Lock()
	defer r.mu.Unlock()

	var res PublishResult
	_, present := r.bySID[sid]
	if !present {
		r.bySID[sid] = &roomEntry{session: ms, member: domain.NewMember(ms.Identity(), r.opts.Now())}
		r.order = append(r.order, sid)
		r.fanout(&res, MemberJoinedEvent(r.room.ID, ms.Identity()), sid)
		log.Info().Str("module", "core.room").Str("room", string(r.room.ID)).Str("sid", string(sid)).
			Str("identity", string(ms.Identity().ID)).Msg("member added")
	}

	// The join response is queued before the lock is released, so no live
	// event of this room can reach the joiner ahead of it.
	r.deliver(&res, ms, JoinedEvent(r.room, ms.Identity(), r.snapshotLocked(sid)))
	r.deliver(&res, ms, HistoryEvent(r.room.ID, r.history.Snapshot()))
	return res, !present
}

func (r *roomImpl) RemoveMember(sid SessionID) (PublishResult, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var res PublishResult
	entry, ok := r.bySID[sid]
	if !ok {
		return res, false
	}
	delete(r.bySID, sid)
	r.order = slices.DeleteFunc(r.order, func(s SessionID) bool { return s == sid })
	r.fanout(&res, MemberLeftEvent(r.room.ID, entry.member.Identity), "")
	log.Info().Str("module", "core.room").Str("room", string(r.room.ID)).Str("sid", string(sid)).Msg("member removed")
	return res, true
}

func (r *roomImpl) Post(from SessionID, body string) (domain.Message, PublishResult, error) {
	body = strings.TrimSpace(body)

	r.mu.Lock()
	defer r.mu.Unlock()

	var res PublishResult
	entry, ok := r.bySID[from]
	if !ok {
		return domain.Message{}, res, Errorf(KindNotAMember, "not a member of room %s", r.room.ID)
	}
	if body == "" {
		return domain.Message{}, res, ErrEmptyMessage
	}
	if utf8.RuneCountInString(body) > r.opts.MaxMessageLen {
		return domain.Message{}, res, Errorf(KindInvalidArgument, "message longer than %d characters", r.opts.MaxMessageLen)
	}

	msg := domain.Message{
		ID:        NewMessageID(),
		RoomID:    r.room.ID,
		Author:    entry.member.Identity,
		Body:      body,
		Timestamp: r.opts.Now(),
	}
	if evicted := r.history.Append(msg); evicted {
		log.Debug().Str("module", "core.room").Str("room", string(r.room.ID)).Msg("history full, evicted oldest")
	}
	r.fanout(&res, MessageEvent(msg), "")
	log.Debug().Str("module", "core.room").Str("room", string(r.room.ID)).Str("from", string(from)).
		Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return msg, res, nil
}

// snapshotLocked lists identities in join order, skipping except.
func (r *roomImpl) snapshotLocked(except SessionID) []domain.Identity {
	out := make([]domain.Identity, 0, len(r.order))
	for _, sid := range r.order {
		if sid == except {
			continue
		}
		out = append(out, r.bySID[sid].member.Identity)
	}
	return out
}

func (r *roomImpl) fanout(res *PublishResult, ev Event, except SessionID) {
	for _, sid := range r.order {
		if sid == except {
			continue
		}
		r.deliver(res, r.bySID[sid].session, ev)
	}
}

func (r *roomImpl) deliver(res *PublishResult, ms MemberSession, ev Event) {
	res.Deliver(ms, ev)
}

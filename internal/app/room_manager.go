package app

import (
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/rs/zerolog/log"
)

const MaxRoomNameLen = 64

// RoomManagerImpl is the in-memory room registry. It is built once in main and lives
// as long as the process; rooms are never removed.
type RoomManagerImpl struct {
	opts core.RoomOptions

	mu    sync.RWMutex
	rooms map[domain.RoomID]core.RoomService
	order []domain.RoomID // creation order
}

func NewRoomManager(opts core.RoomOptions) core.RoomManager {
	return &RoomManagerImpl{
		opts:  opts,
		rooms: make(map[domain.RoomID]core.RoomService),
	}
}

func (f *RoomManagerImpl) CreateRoom(name string) (core.RoomService, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, core.Errorf(core.KindInvalidArgument, "room name is empty")
	}
	if utf8.RuneCountInString(name) > MaxRoomNameLen {
		return nil, core.Errorf(core.KindInvalidArgument, "room name longer than %d characters", MaxRoomNameLen)
	}
	now := time.Now
	if f.opts.Now != nil {
		now = f.opts.Now
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	id := core.NewRoomID()
	for _, taken := f.rooms[id]; taken; _, taken = f.rooms[id] {
		id = core.NewRoomID()
	}
	room := core.NewRoomService(domain.Room{ID: id, Name: domain.RoomName(name), CreatedAt: now()}, f.opts)
	f.rooms[id] = room
	f.order = append(f.order, id)
	log.Info().Str("module", "app.rooms").Str("room", string(id)).Str("name", name).Msg("room created")
	return room, nil
}

func (f *RoomManagerImpl) GetRoom(id domain.RoomID) (core.RoomService, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	room, ok := f.rooms[id]
	return room, ok
}

func (f *RoomManagerImpl) List() []core.RoomInfo {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]core.RoomInfo, 0, len(f.order))
	for _, id := range f.order {
		r := f.rooms[id]
		out = append(out, core.RoomInfo{ID: id, Name: r.Room().Name, MemberCount: r.MemberCount()})
	}
	return out
}

// Package workflowtest 提供内存版的 workflow.Store，供测试使用。
//
// 每个事务在开启时复制一份完整的数据，提交时整体替换；事务持有全局锁直到结束，
// 因此所有事务都是串行执行的。约束检查与 PostgreSQL 中的约束保持一致。
package workflowtest

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/domain"
	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/workflow"
)

var ErrTxDone = errors.New("事务已经结束")

type state struct {
	users   map[int64]domain.User
	shifts  map[int64]domain.Shift
	rosters map[int64]domain.Roster // shiftID -> roster
	records map[int64]domain.AttendanceRecord

	nextUserID   int64
	nextShiftID  int64
	nextRecordID int64
}

func newState() *state {
	return &state{
		users:   make(map[int64]domain.User),
		shifts:  make(map[int64]domain.Shift),
		rosters: make(map[int64]domain.Roster),
		records: make(map[int64]domain.AttendanceRecord),
	}
}

func (s *state) clone() *state {
	c := &state{
		users:        make(map[int64]domain.User, len(s.users)),
		shifts:       make(map[int64]domain.Shift, len(s.shifts)),
		rosters:      make(map[int64]domain.Roster, len(s.rosters)),
		records:      make(map[int64]domain.AttendanceRecord, len(s.records)),
		nextUserID:   s.nextUserID,
		nextShiftID:  s.nextShiftID,
		nextRecordID: s.nextRecordID,
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.shifts {
		c.shifts[k] = v
	}
	for k, v := range s.rosters {
		c.rosters[k] = v
	}
	for k, v := range s.records {
		if v.TimeOut != nil {
			t := *v.TimeOut
			v.TimeOut = &t
		}
		c.records[k] = v
	}
	return c
}

type Store struct {
	mu    sync.Mutex
	state *state

	// Commits 记录成功提交的事务数量
	Commits int
}

var _ workflow.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{state: newState()}
}

func (s *Store) BeginTx(ctx context.Context) (workflow.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	return &Tx{store: s, state: s.state.clone()}, nil
}

// Users 返回按 ID 排序的所有用户
func (s *Store) Users() []domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedValues(s.state.users, func(u domain.User) int64 { return u.ID })
}

func (s *Store) Shifts() []domain.Shift {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedValues(s.state.shifts, func(v domain.Shift) int64 { return v.ID })
}

func (s *Store) Rosters() []domain.Roster {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedValues(s.state.rosters, func(v domain.Roster) int64 { return v.ShiftID })
}

func (s *Store) AttendanceRecords() []domain.AttendanceRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedValues(s.state.clone().records, func(v domain.AttendanceRecord) int64 { return v.ID })
}

// InsertAttendanceRecord 跳过未签退记录的唯一性检查直接写入，用于模拟约束建立之前遗留的数据
func (s *Store) InsertAttendanceRecord(record domain.AttendanceRecord) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.nextRecordID++
	record.ID = s.state.nextRecordID
	if record.TimeOut != nil {
		t := *record.TimeOut
		record.TimeOut = &t
	}
	s.state.records[record.ID] = record
	return record.ID
}

func sortedValues[T any](m map[int64]T, id func(T) int64) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b T) int {
		return compareInt64(id(a), id(b))
	})
	return out
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

type Tx struct {
	store *Store
	state *state
	done  bool
}

func (tx *Tx) finish() error {
	if tx.done {
		return ErrTxDone
	}
	tx.done = true
	tx.store.mu.Unlock()
	return nil
}

func (tx *Tx) Commit() error {
	if tx.done {
		return ErrTxDone
	}
	tx.store.state = tx.state
	tx.store.Commits++
	return tx.finish()
}

func (tx *Tx) Rollback() error {
	return tx.finish()
}

func (tx *Tx) CreateUser(ctx context.Context, user *domain.User) error {
	for _, u := range tx.state.users {
		if u.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}

	tx.state.nextUserID++
	user.ID = tx.state.nextUserID
	user.CreatedAt = time.Now()
	user.Version = 1
	tx.state.users[user.ID] = *user
	return nil
}

func (tx *Tx) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	u, ok := tx.state.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (tx *Tx) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range tx.state.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (tx *Tx) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return tx.listUsers(func(domain.User) bool { return true }), nil
}

func (tx *Tx) ListUsersByRole(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	return tx.listUsers(func(u domain.User) bool { return u.Role == role }), nil
}

func (tx *Tx) listUsers(keep func(domain.User) bool) []*domain.User {
	users := make([]*domain.User, 0)
	for _, u := range sortedValues(tx.state.users, func(u domain.User) int64 { return u.ID }) {
		if keep(u) {
			users = append(users, &u)
		}
	}
	return users
}

func (tx *Tx) UpdateUser(ctx context.Context, user *domain.User) error {
	current, ok := tx.state.users[user.ID]
	if !ok || current.Version != user.Version {
		return domain.ErrVersionConflict
	}
	for id, u := range tx.state.users {
		if id != user.ID && u.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}

	user.Version++
	user.CreatedAt = current.CreatedAt
	tx.state.users[user.ID] = *user
	return nil
}

func (tx *Tx) CreateShift(ctx context.Context, shift *domain.Shift) error {
	if _, ok := tx.state.users[shift.UserID]; !ok {
		return domain.ErrUserNotFound
	}
	if shift.WeekStart.After(shift.WeekEnd) {
		return domain.ErrInvalidInterval
	}
	if shift.RequestStatus == "" {
		shift.RequestStatus = domain.RequestNone
	}

	tx.state.nextShiftID++
	shift.ID = tx.state.nextShiftID
	shift.CreatedAt = time.Now()
	shift.Version = 1
	tx.state.shifts[shift.ID] = *shift
	return nil
}

func (tx *Tx) GetShiftByID(ctx context.Context, id int64) (*domain.Shift, error) {
	s, ok := tx.state.shifts[id]
	if !ok {
		return nil, domain.ErrShiftNotFound
	}
	return &s, nil
}

func (tx *Tx) GetShiftForUpdate(ctx context.Context, id int64) (*domain.Shift, error) {
	return tx.GetShiftByID(ctx, id)
}

func (tx *Tx) UpdateShiftRequest(ctx context.Context, shift *domain.Shift) error {
	current, ok := tx.state.shifts[shift.ID]
	if !ok || current.Version != shift.Version {
		return domain.ErrVersionConflict
	}

	current.RequestStatus = shift.RequestStatus
	current.ChangeRequest = shift.ChangeRequest
	current.Version++
	shift.Version = current.Version
	tx.state.shifts[shift.ID] = current
	return nil
}

func (tx *Tx) ListShiftsByUserID(ctx context.Context, userID int64) ([]*domain.Shift, error) {
	return tx.listShifts(func(s domain.Shift) bool { return s.UserID == userID }), nil
}

func (tx *Tx) ListShiftsWithin(ctx context.Context, start, end time.Time) ([]*domain.Shift, error) {
	return tx.listShifts(func(s domain.Shift) bool { return s.Contains(start, end) }), nil
}

// listShifts 按开始日期和 ID 排序
func (tx *Tx) listShifts(keep func(domain.Shift) bool) []*domain.Shift {
	shifts := make([]*domain.Shift, 0)
	for _, s := range tx.state.shifts {
		if keep(s) {
			shifts = append(shifts, &s)
		}
	}
	slices.SortFunc(shifts, func(a, b *domain.Shift) int {
		if c := a.WeekStart.Compare(b.WeekStart); c != 0 {
			return c
		}
		return compareInt64(a.ID, b.ID)
	})
	return shifts
}

func (tx *Tx) CreateRosters(ctx context.Context, rosters []*domain.Roster) error {
	for _, r := range rosters {
		if _, ok := tx.state.shifts[r.ShiftID]; !ok {
			return domain.ErrShiftNotFound
		}
		if _, ok := tx.state.users[r.UserID]; !ok {
			return domain.ErrUserNotFound
		}
		if _, ok := tx.state.rosters[r.ShiftID]; ok {
			return domain.ErrAlreadyRostered
		}

		r.CreatedAt = time.Now()
		tx.state.rosters[r.ShiftID] = *r
	}
	return nil
}

func (tx *Tx) ListRostersByUserID(ctx context.Context, userID int64) ([]*domain.Roster, error) {
	rosters := make([]*domain.Roster, 0)
	for _, r := range sortedValues(tx.state.rosters, func(r domain.Roster) int64 { return r.ShiftID }) {
		if tx.state.shifts[r.ShiftID].UserID == userID {
			rosters = append(rosters, &r)
		}
	}
	return rosters, nil
}

func (tx *Tx) ListWeeklyRoster(ctx context.Context, start, end time.Time) ([]*domain.WeeklyRosterEntry, error) {
	entries := make([]*domain.WeeklyRosterEntry, 0)
	for _, s := range tx.listShifts(func(s domain.Shift) bool { return s.Contains(start, end) }) {
		r, ok := tx.state.rosters[s.ID]
		if !ok {
			continue
		}
		u := tx.state.users[r.UserID]
		entries = append(entries, &domain.WeeklyRosterEntry{
			ShiftID:   s.ID,
			Date:      s.WeekStart,
			UserID:    u.ID,
			UserName:  u.Name,
			UserEmail: u.Email,
		})
	}
	return entries, nil
}

func (tx *Tx) CreateAttendanceRecord(ctx context.Context, record *domain.AttendanceRecord) error {
	if _, ok := tx.state.shifts[record.ShiftID]; !ok {
		return domain.ErrShiftNotFound
	}
	if _, ok := tx.state.users[record.UserID]; !ok {
		return domain.ErrUserNotFound
	}
	if record.TimeOut == nil {
		for _, r := range tx.state.records {
			if r.ShiftID == record.ShiftID && r.UserID == record.UserID && r.TimeOut == nil {
				return domain.ErrAlreadyClockedIn
			}
		}
	} else if record.TimeOut.Before(record.TimeIn) {
		return domain.ErrInvalidInterval
	}

	tx.state.nextRecordID++
	record.ID = tx.state.nextRecordID
	stored := *record
	if record.TimeOut != nil {
		t := *record.TimeOut
		stored.TimeOut = &t
	}
	tx.state.records[record.ID] = stored
	return nil
}

func (tx *Tx) FindOpenAttendanceRecord(ctx context.Context, shiftID, userID int64) (*domain.AttendanceRecord, error) {
	var found *domain.AttendanceRecord
	for _, r := range tx.state.records {
		if r.ShiftID != shiftID || r.UserID != userID || r.TimeOut != nil {
			continue
		}
		if found == nil || r.TimeIn.Before(found.TimeIn) || (r.TimeIn.Equal(found.TimeIn) && r.ID < found.ID) {
			found = &r
		}
	}
	if found == nil {
		return nil, domain.ErrNoActiveRecord
	}
	return found, nil
}

func (tx *Tx) CloseAttendanceRecord(ctx context.Context, record *domain.AttendanceRecord, timeOut time.Time) error {
	current, ok := tx.state.records[record.ID]
	if !ok || current.TimeOut != nil {
		return domain.ErrNoActiveRecord
	}
	if timeOut.Before(current.TimeIn) {
		return domain.ErrInvalidInterval
	}

	stored := timeOut
	current.TimeOut = &stored
	tx.state.records[record.ID] = current

	out := timeOut
	record.TimeOut = &out
	return nil
}

func (tx *Tx) ListAttendanceRecordsByTimeIn(ctx context.Context, from, to time.Time) ([]*domain.AttendanceRecord, error) {
	records := make([]*domain.AttendanceRecord, 0)
	for _, r := range sortedValues(tx.state.records, func(r domain.AttendanceRecord) int64 { return r.ID }) {
		if !r.TimeIn.Before(from) && r.TimeIn.Before(to) {
			records = append(records, &r)
		}
	}
	return records, nil
}

// Package memstore 提供各存储接口的内存实现，行为与 repository 包保持一致，供测试使用
package memstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"seclink_backend/internal/model"
	"seclink_backend/internal/util"
	"seclink_backend/pkg/mailer"
	"sort"
	"sync"
	"time"
)

type Accounts struct {
	mu   sync.Mutex
	next uint
	rows map[uint]model.Account
}

func NewAccounts() *Accounts {
	return &Accounts{rows: map[uint]model.Account{}}
}

func (f *Accounts) Create(ctx context.Context, a *model.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.Email == a.Email || r.Username == a.Username {
			return util.ErrConflict
		}
	}
	f.next++
	a.ID = f.next
	if a.TeacherProfile != nil {
		a.TeacherProfile.AccountID = a.ID
	}
	if a.ParentProfile != nil {
		a.ParentProfile.AccountID = a.ID
	}
	f.rows[a.ID] = *a
	return nil
}

func (f *Accounts) FindByID(ctx context.Context, id uint) (*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.rows[id]
	if !ok {
		return nil, util.ErrAccountNotFound
	}
	return &a, nil
}

func (f *Accounts) find(match func(model.Account) bool) (*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.rows {
		if match(a) {
			return &a, nil
		}
	}
	return nil, util.ErrAccountNotFound
}

func (f *Accounts) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	return f.find(func(a model.Account) bool { return a.Email == email })
}

func (f *Accounts) FindByUsername(ctx context.Context, username string) (*model.Account, error) {
	return f.find(func(a model.Account) bool { return a.Username == username })
}

func (f *Accounts) FindByIDs(ctx context.Context, ids []uint, role model.Role) ([]model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Account
	for _, id := range ids {
		if a, ok := f.rows[id]; ok && a.Role == role {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *Accounts) ListByRole(ctx context.Context, role model.Role) ([]model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Account
	for _, a := range f.rows {
		if a.Role == role {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *Accounts) Update(ctx context.Context, a *model.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[a.ID]; !ok {
		return util.ErrAccountNotFound
	}
	f.rows[a.ID] = *a
	return nil
}

func (f *Accounts) UpdatePassword(ctx context.Context, id uint, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.rows[id]
	if !ok {
		return util.ErrAccountNotFound
	}
	a.Password = hash
	f.rows[id] = a
	return nil
}

func (f *Accounts) Delete(ctx context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return util.ErrAccountNotFound
	}
	delete(f.rows, id)
	return nil
}

type Classes struct {
	mu   sync.Mutex
	next uint
	rows map[uint]model.Class
}

func NewClasses() *Classes {
	return &Classes{rows: map[uint]model.Class{}}
}

func (f *Classes) Create(ctx context.Context, c *model.Class) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	c.ID = f.next
	f.rows[c.ID] = *c
	return nil
}

func (f *Classes) FindByID(ctx context.Context, id uint) (*model.Class, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.rows[id]
	if !ok {
		return nil, util.ErrClassNotFound
	}
	return &c, nil
}

func (f *Classes) ListByTeacher(ctx context.Context, teacherID uint) ([]model.Class, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Class
	for _, c := range f.rows {
		if c.TeacherID == teacherID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *Classes) ListByIDs(ctx context.Context, ids []uint) ([]model.Class, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Class
	for _, id := range ids {
		if c, ok := f.rows[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *Classes) Update(ctx context.Context, c *model.Class) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[c.ID] = *c
	return nil
}

func (f *Classes) Delete(ctx context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return util.ErrClassNotFound
	}
	delete(f.rows, id)
	return nil
}

type Subjects struct {
	mu   sync.Mutex
	next uint
	rows map[uint]model.Subject
}

func NewSubjects() *Subjects {
	return &Subjects{rows: map[uint]model.Subject{}}
}

func (f *Subjects) Create(ctx context.Context, s *model.Subject) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	s.ID = f.next
	f.rows[s.ID] = *s
	return nil
}

func (f *Subjects) FindByID(ctx context.Context, id uint) (*model.Subject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[id]
	if !ok {
		return nil, util.ErrSubjectNotFound
	}
	return &s, nil
}

func (f *Subjects) ListByTeacher(ctx context.Context, teacherID uint) ([]model.Subject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Subject
	for _, s := range f.rows {
		if s.TeacherID == teacherID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *Subjects) ListByIDs(ctx context.Context, ids []uint) ([]model.Subject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Subject
	for _, id := range ids {
		if s, ok := f.rows[id]; ok {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *Subjects) Update(ctx context.Context, s *model.Subject) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[s.ID] = *s
	return nil
}

func (f *Subjects) Delete(ctx context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return util.ErrSubjectNotFound
	}
	delete(f.rows, id)
	return nil
}

type Students struct {
	mu       sync.Mutex
	next     uint
	rows     map[uint]model.Student
	subjects *Subjects
}

func NewStudents(subjects *Subjects) *Students {
	return &Students{rows: map[uint]model.Student{}, subjects: subjects}
}

func (f *Students) Create(ctx context.Context, s *model.Student) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	s.ID = f.next
	f.rows[s.ID] = *s
	return nil
}

func (f *Students) FindByID(ctx context.Context, id uint) (*model.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[id]
	if !ok {
		return nil, util.ErrStudentNotFound
	}
	s.Subjects = append([]model.Subject(nil), s.Subjects...)
	return &s, nil
}

func (f *Students) list(match func(model.Student) bool) []model.Student {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Student
	for _, s := range f.rows {
		if match(s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *Students) ListByTeacher(ctx context.Context, teacherID uint) ([]model.Student, error) {
	return f.list(func(s model.Student) bool { return s.TeacherID == teacherID }), nil
}

func (f *Students) ListByParent(ctx context.Context, parentID uint) ([]model.Student, error) {
	return f.list(func(s model.Student) bool { return s.ParentID != nil && *s.ParentID == parentID }), nil
}

func (f *Students) ListByAccount(ctx context.Context, accountID uint) ([]model.Student, error) {
	return f.list(func(s model.Student) bool { return s.AccountID != nil && *s.AccountID == accountID }), nil
}

func (f *Students) teaches(s model.Student, teacherID uint) bool {
	for _, sub := range s.Subjects {
		if cur, err := f.subjects.FindByID(context.Background(), sub.ID); err == nil && cur.TeacherID == teacherID {
			return true
		}
	}
	return false
}

func (f *Students) TaughtBy(ctx context.Context, studentID, teacherID uint) (bool, error) {
	s, err := f.FindByID(ctx, studentID)
	if err != nil {
		return false, nil
	}
	return f.teaches(*s, teacherID), nil
}

func (f *Students) ParentIDsTaughtBy(ctx context.Context, teacherID uint) ([]uint, error) {
	seen := map[uint]bool{}
	var ids []uint
	for _, s := range f.list(func(model.Student) bool { return true }) {
		if s.ParentID == nil || seen[*s.ParentID] {
			continue
		}
		if s.TeacherID == teacherID || f.teaches(s, teacherID) {
			seen[*s.ParentID] = true
			ids = append(ids, *s.ParentID)
		}
	}
	return ids, nil
}

func (f *Students) Update(ctx context.Context, s *model.Student) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.rows[s.ID]
	if !ok {
		return util.ErrStudentNotFound
	}
	cur.Name, cur.DOB, cur.ClassID, cur.ParentID = s.Name, s.DOB, s.ClassID, s.ParentID
	f.rows[s.ID] = cur
	return nil
}

func (f *Students) AddSubject(ctx context.Context, studentID uint, subject *model.Subject) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[studentID]
	if !ok {
		return util.ErrStudentNotFound
	}
	for _, sub := range s.Subjects {
		if sub.ID == subject.ID {
			return nil
		}
	}
	s.Subjects = append(s.Subjects, *subject)
	f.rows[studentID] = s
	return nil
}

func (f *Students) LinkAccount(ctx context.Context, studentID, accountID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[studentID]
	if !ok {
		return util.ErrStudentNotFound
	}
	s.AccountID = &accountID
	f.rows[studentID] = s
	return nil
}

func (f *Students) UpdateOverallGrade(ctx context.Context, studentID uint, letter string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[studentID]
	if !ok {
		return util.ErrStudentNotFound
	}
	s.OverallGrade = &letter
	s.OverallComputedAt = &at
	f.rows[studentID] = s
	return nil
}

func (f *Students) Delete(ctx context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return util.ErrStudentNotFound
	}
	delete(f.rows, id)
	return nil
}

type Grades struct {
	mu   sync.Mutex
	next uint
	rows []model.Grade
	now  func() time.Time
}

func NewGrades(now func() time.Time) *Grades {
	return &Grades{now: now}
}

func (f *Grades) GradesFor(ctx context.Context, studentID uint) ([]model.Grade, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Grade
	for _, g := range f.rows {
		if g.StudentID == studentID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *Grades) insert(g *model.Grade) {
	f.next++
	g.ID = f.next
	g.CreatedAt = f.now()
	g.UpdatedAt = g.CreatedAt
	f.rows = append(f.rows, *g)
}

func (f *Grades) AddGrade(ctx context.Context, g *model.Grade) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insert(g)
	return nil
}

func (f *Grades) ReplaceGrade(ctx context.Context, g *model.Grade) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.rows[:0]
	for _, r := range f.rows {
		if r.StudentID != g.StudentID || r.SubjectID != g.SubjectID {
			kept = append(kept, r)
		}
	}
	f.rows = kept
	f.insert(g)
	return nil
}

type Notifications struct {
	mu   sync.Mutex
	next uint
	rows map[uint]model.Notification
}

func NewNotifications() *Notifications {
	return &Notifications{rows: map[uint]model.Notification{}}
}

func (f *Notifications) Create(ctx context.Context, n *model.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	n.ID = f.next
	f.rows[n.ID] = *n
	return nil
}

func (f *Notifications) FindByID(ctx context.Context, id uint) (*model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.rows[id]
	if !ok {
		return nil, util.ErrNotificationNotFound
	}
	return &n, nil
}

func (f *Notifications) ListBySender(ctx context.Context, senderID uint) ([]model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Notification
	for _, n := range f.rows {
		if n.SenderID == senderID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *Notifications) ListForParent(ctx context.Context, parentID uint, studentIDs []uint) ([]model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	wanted := map[uint]bool{}
	for _, id := range studentIDs {
		wanted[id] = true
	}
	var out []model.Notification
	for _, n := range f.rows {
		match := false
		for _, p := range n.Parents {
			match = match || p.ID == parentID
		}
		for _, s := range n.Students {
			match = match || wanted[s.ID]
		}
		if match {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *Notifications) Delete(ctx context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return util.ErrNotificationNotFound
	}
	delete(f.rows, id)
	return nil
}

type Materials struct {
	mu        sync.Mutex
	next      uint
	rows      map[uint]model.LearningMaterial
	FailWrite bool
}

func NewMaterials() *Materials {
	return &Materials{rows: map[uint]model.LearningMaterial{}}
}

func (f *Materials) Create(ctx context.Context, m *model.LearningMaterial) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWrite {
		return errors.New("insert failed")
	}
	f.next++
	m.ID = f.next
	f.rows[m.ID] = *m
	return nil
}

func (f *Materials) FindByID(ctx context.Context, id uint) (*model.LearningMaterial, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.rows[id]
	if !ok {
		return nil, util.ErrMaterialNotFound
	}
	return &m, nil
}

func (f *Materials) ListByTeacher(ctx context.Context, teacherID uint) ([]model.LearningMaterial, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.LearningMaterial
	for _, m := range f.rows {
		if m.TeacherID == teacherID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *Materials) ListBySubjects(ctx context.Context, subjectIDs []uint) ([]model.LearningMaterial, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	wanted := map[uint]bool{}
	for _, id := range subjectIDs {
		wanted[id] = true
	}
	var out []model.LearningMaterial
	for _, m := range f.rows {
		if wanted[m.SubjectID] {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Delete 模拟事务：removeFile 失败时记录保留
func (f *Materials) Delete(ctx context.Context, id uint, removeFile func() error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return util.ErrMaterialNotFound
	}
	if removeFile != nil {
		if err := removeFile(); err != nil {
			return err
		}
	}
	delete(f.rows, id)
	return nil
}

type ResetTokens struct {
	mu   sync.Mutex
	next uint
	rows map[string]model.PasswordResetToken
}

func NewResetTokens() *ResetTokens {
	return &ResetTokens{rows: map[string]model.PasswordResetToken{}}
}

func (f *ResetTokens) Create(ctx context.Context, t *model.PasswordResetToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	t.ID = f.next
	f.rows[t.Token] = *t
	return nil
}

func (f *ResetTokens) Consume(ctx context.Context, token string) (*model.PasswordResetToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.rows[token]
	if !ok {
		return nil, util.ErrTokenInvalid
	}
	delete(f.rows, token)
	return &t, nil
}

func (f *ResetTokens) DeleteByAccount(ctx context.Context, accountID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, t := range f.rows {
		if t.AccountID == accountID {
			delete(f.rows, k)
		}
	}
	return nil
}

type Denylist struct {
	mu      sync.Mutex
	Revoked map[string]time.Duration
}

func NewDenylist() *Denylist {
	return &Denylist{Revoked: map[string]time.Duration{}}
}

func (f *Denylist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Revoked[jti] = ttl
	return nil
}

func (f *Denylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.Revoked[jti]
	return ok, nil
}

type Storage struct {
	mu         sync.Mutex
	Files      map[string][]byte
	FailDelete bool
}

func NewStorage() *Storage {
	return &Storage{Files: map[string][]byte{}}
}

func (f *Storage) Upload(ctx context.Context, filename string, r io.Reader, size int64, contentType string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Files[filename] = data
	return f.GetURL(filename), nil
}

func (f *Storage) Open(ctx context.Context, filename string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.Files[filename]
	if !ok {
		return nil, util.ErrFileNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *Storage) Delete(ctx context.Context, filename string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailDelete {
		return errors.New("storage unavailable")
	}
	delete(f.Files, filename)
	return nil
}

func (f *Storage) GetURL(filename string) string {
	return "/uploads/" + filename
}

type Mailer struct {
	mu   sync.Mutex
	Sent []*mailer.Message
}

func (f *Mailer) Send(ctx context.Context, msg *mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Sent = append(f.Sent, msg)
	return nil
}

func (f *Grades) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

func (f *Materials) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

func (f *ResetTokens) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

// Lookup 不消费令牌
func (f *ResetTokens) Lookup(token string) (model.PasswordResetToken, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.rows[token]
	return t, ok
}

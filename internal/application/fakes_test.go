package application

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/citygate/csrms/internal/domain/entity"
	"github.com/citygate/csrms/internal/domain/repository"
	"github.com/citygate/csrms/pkg/mailer"
)

// In-memory fakes for the repository interfaces. State mutations are not
// transactional; tests that care about rollback assert on the error path and
// on side effects that must not have run.

type fakeTx struct {
	calls int
	// fail aborts the unit of work after fn ran, simulating a commit error.
	fail error
}

func (t *fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	if err := fn(ctx); err != nil {
		return err
	}
	return t.fail
}

type fakeUserRepo struct {
	users  map[string]*entity.User // by id
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*entity.User{}}
}

func (r *fakeUserRepo) add(u *entity.User) *entity.User {
	r.nextID++
	if u.ID == "" {
		u.ID = fmt.Sprintf("user-%d", r.nextID)
	}
	u.IsActive = true
	r.users[u.ID] = u
	return u
}

func (r *fakeUserRepo) Create(ctx context.Context, u *entity.User) error {
	r.add(u)
	u.RegistrationDate = time.Now()
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u := r.users[id]
	if u == nil || !u.IsActive {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Email == email && u.IsActive {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByEmailForUpdate(ctx context.Context, email string) (*entity.User, error) {
	return r.GetByEmail(ctx, email)
}

func (r *fakeUserRepo) UpdateProfile(ctx context.Context, u *entity.User) error {
	if cur := r.users[u.ID]; cur != nil {
		cur.FullName, cur.PhoneNumber, cur.Address = u.FullName, u.PhoneNumber, u.Address
	}
	return nil
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, id, hash string) error {
	if u := r.users[id]; u != nil {
		u.PasswordHash = hash
	}
	return nil
}

func (r *fakeUserRepo) SetOTP(ctx context.Context, id, code string, expires time.Time) error {
	if u := r.users[id]; u != nil {
		u.OTPCode, u.OTPExpires = &code, &expires
	}
	return nil
}

func (r *fakeUserRepo) ClearOTP(ctx context.Context, id string) error {
	if u := r.users[id]; u != nil {
		u.OTPCode, u.OTPExpires = nil, nil
	}
	return nil
}

func (r *fakeUserRepo) MarkVerified(ctx context.Context, id string) error {
	if u := r.users[id]; u != nil {
		u.IsVerified = true
		u.OTPCode, u.OTPExpires = nil, nil
	}
	return nil
}

func (r *fakeUserRepo) Deactivate(ctx context.Context, id string) error {
	if u := r.users[id]; u != nil {
		u.IsActive = false
	}
	return nil
}

type fakeCitizenRepo struct {
	citizens map[string]*entity.Citizen // by user id
}

func newFakeCitizenRepo() *fakeCitizenRepo {
	return &fakeCitizenRepo{citizens: map[string]*entity.Citizen{}}
}

func (r *fakeCitizenRepo) Create(ctx context.Context, c *entity.Citizen) error {
	if c.ID == "" {
		c.ID = "cit-" + c.UserID
	}
	r.citizens[c.UserID] = c
	return nil
}

func (r *fakeCitizenRepo) GetByUserID(ctx context.Context, userID string) (*entity.Citizen, error) {
	c := r.citizens[userID]
	if c == nil {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCitizenRepo) byID(citizenID string) *entity.Citizen {
	for _, c := range r.citizens {
		if c.ID == citizenID {
			return c
		}
	}
	return nil
}

func (r *fakeCitizenRepo) IncrementSubmitted(ctx context.Context, citizenID string) error {
	if c := r.byID(citizenID); c != nil {
		c.TotalRequestsSubmitted++
	}
	return nil
}

func (r *fakeCitizenRepo) IncrementResolved(ctx context.Context, citizenID string) error {
	if c := r.byID(citizenID); c != nil {
		c.TotalRequestsResolved++
	}
	return nil
}

func (r *fakeCitizenRepo) UpdateNotificationPreference(ctx context.Context, userID string, pref entity.NotificationPreference) error {
	if c := r.citizens[userID]; c != nil {
		c.NotificationPreference = pref
	}
	return nil
}

type fakeAuditRepo struct {
	entries []entity.AuditEntry
	fail    error
}

func (r *fakeAuditRepo) Record(ctx context.Context, e *entity.AuditEntry) error {
	if r.fail != nil {
		return r.fail
	}
	e.CreatedAt = time.Now()
	r.entries = append(r.entries, *e)
	return nil
}

func (r *fakeAuditRepo) lastAction() string {
	if len(r.entries) == 0 {
		return ""
	}
	return r.entries[len(r.entries)-1].Action
}

type fakeRequestRepo struct {
	requests map[string]*repository.RequestWithOwner // by code
	nextID   int
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: map[string]*repository.RequestWithOwner{}}
}

func (r *fakeRequestRepo) add(rw *repository.RequestWithOwner) *repository.RequestWithOwner {
	r.nextID++
	if rw.ID == "" {
		rw.ID = fmt.Sprintf("req-%d", r.nextID)
	}
	r.requests[rw.RequestCode] = rw
	return rw
}

func (r *fakeRequestRepo) Create(ctx context.Context, req *entity.ServiceRequest) error {
	req.SubmissionDate = time.Now()
	if req.ID == "" {
		r.nextID++
		req.ID = fmt.Sprintf("req-%d", r.nextID)
	}
	r.requests[req.RequestCode] = &repository.RequestWithOwner{ServiceRequest: *req}
	return nil
}

func (r *fakeRequestRepo) GetByCode(ctx context.Context, code string) (*repository.RequestWithOwner, error) {
	rw := r.requests[code]
	if rw == nil {
		return nil, nil
	}
	cp := *rw
	return &cp, nil
}

func (r *fakeRequestRepo) GetByCodeForUpdate(ctx context.Context, code string) (*repository.RequestWithOwner, error) {
	return r.GetByCode(ctx, code)
}

func (r *fakeRequestRepo) byID(id string) *repository.RequestWithOwner {
	for _, rw := range r.requests {
		if rw.ID == id {
			return rw
		}
	}
	return nil
}

func (r *fakeRequestRepo) UpdateStatus(ctx context.Context, id string, status entity.RequestStatus, resolvedAt *time.Time) error {
	if rw := r.byID(id); rw != nil {
		rw.Status = status
		if resolvedAt != nil && rw.ResolutionDate == nil {
			rw.ResolutionDate = resolvedAt
		}
	}
	return nil
}

func (r *fakeRequestRepo) CloseEligible(ctx context.Context, code string, closedAt time.Time) (*repository.RequestWithOwner, error) {
	rw := r.requests[code]
	if rw == nil || rw.Status == entity.StatusClosed || rw.Status == entity.StatusRejected {
		return nil, nil
	}
	rw.Status = entity.StatusClosed
	if rw.ResolutionDate == nil {
		rw.ResolutionDate = &closedAt
	}
	cp := *rw
	return &cp, nil
}

func (r *fakeRequestRepo) SetImagePath(ctx context.Context, id, imageURL string) error {
	if rw := r.byID(id); rw != nil {
		rw.ImagePath = &imageURL
	}
	return nil
}

func (r *fakeRequestRepo) List(ctx context.Context, f repository.RequestFilter) ([]entity.ServiceRequest, error) {
	out := []entity.ServiceRequest{}
	for _, rw := range r.requests {
		if f.Status != "" && rw.Status != f.Status {
			continue
		}
		out = append(out, rw.ServiceRequest)
	}
	return out, nil
}

func (r *fakeRequestRepo) ListByOwner(ctx context.Context, userID string, limit int) ([]entity.ServiceRequest, error) {
	out := []entity.ServiceRequest{}
	for _, rw := range r.requests {
		if rw.OwnerUserID == userID {
			out = append(out, rw.ServiceRequest)
		}
	}
	return out, nil
}

func (r *fakeRequestRepo) StatusCounts(ctx context.Context, userID string) (*repository.StatusCounts, error) {
	sc := &repository.StatusCounts{}
	for _, rw := range r.requests {
		if rw.OwnerUserID != userID {
			continue
		}
		sc.Total++
		switch rw.Status {
		case entity.StatusPending:
			sc.Pending++
		case entity.StatusInProgress:
			sc.InProgress++
		case entity.StatusResolved, entity.StatusClosed:
			sc.Resolved++
		case entity.StatusRejected:
			sc.Rejected++
		}
	}
	return sc, nil
}

type fakeNotificationRepo struct {
	created []entity.Notification
	fail    error
}

func (r *fakeNotificationRepo) Create(ctx context.Context, n *entity.Notification) error {
	if r.fail != nil {
		return r.fail
	}
	n.SentDate = time.Now()
	r.created = append(r.created, *n)
	return nil
}

func (r *fakeNotificationRepo) ListByRecipient(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]entity.Notification, int, error) {
	out := []entity.Notification{}
	for _, n := range r.created {
		if n.RecipientID == userID && (!unreadOnly || !n.IsRead) {
			out = append(out, n)
		}
	}
	return out, len(out), nil
}

func (r *fakeNotificationRepo) MarkRead(ctx context.Context, code, userID string) (*entity.Notification, error) {
	for i := range r.created {
		if r.created[i].NotificationCode == code && r.created[i].RecipientID == userID {
			r.created[i].IsRead = true
			return &r.created[i], nil
		}
	}
	return nil, nil
}

func (r *fakeNotificationRepo) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	var n int64
	for i := range r.created {
		if r.created[i].RecipientID == userID && !r.created[i].IsRead {
			r.created[i].IsRead = true
			n++
		}
	}
	return n, nil
}

func (r *fakeNotificationRepo) Delete(ctx context.Context, code, userID string) (*entity.Notification, error) {
	for i := range r.created {
		if r.created[i].NotificationCode == code && r.created[i].RecipientID == userID {
			n := r.created[i]
			r.created = append(r.created[:i], r.created[i+1:]...)
			return &n, nil
		}
	}
	return nil, nil
}

func (r *fakeNotificationRepo) UnreadCount(ctx context.Context, userID string) (int, error) {
	count := 0
	for _, n := range r.created {
		if n.RecipientID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

type fakeQueue struct {
	jobs []mailer.EmailJob
	fail error
}

func (q *fakeQueue) PublishJSON(ctx context.Context, body any) error {
	if q.fail != nil {
		return q.fail
	}
	if job, ok := body.(mailer.EmailJob); ok {
		q.jobs = append(q.jobs, job)
	}
	return nil
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

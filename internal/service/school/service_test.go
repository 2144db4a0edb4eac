package school

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shikshak-watch/shikshak-watch-backend/internal/domain/school"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/domain/user"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/pkg/clock"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/pkg/validator"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const missingID = "7f1c2d3e-4b5a-4c6d-8e9f-0a1b2c3d4e5f"

type sentMessage struct {
	To   string
	Body string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMessage
	fail map[string]bool
}

func (f *fakeSender) Send(ctx context.Context, to string, body string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[to] {
		return "", errors.New("carrier rejected message")
	}
	f.sent = append(f.sent, sentMessage{To: to, Body: body})
	return "SM" + to, nil
}

func newTestService(t *testing.T) (school.SchoolService, *memory.Store, *fakeSender) {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	store := memory.NewStore()
	sender := &fakeSender{fail: map[string]bool{}}
	svc := NewSchoolService(store.Schools(), store.Users(), sender, clock.Fixed(time.Date(2025, 7, 21, 4, 0, 0, 0, time.UTC)), loc)
	return svc, store, sender
}

func validCreate(code string) school.CreateSchoolRequest {
	return school.CreateSchoolRequest{
		Name:      "Govt. Middle School Danapur",
		Code:      code,
		Latitude:  25.6,
		Longitude: 85.04,
		Address:   school.AddressRequest{Block: "Danapur", District: "Patna"},
	}
}

func addUser(t *testing.T, store *memory.Store, email string, role user.Role, schoolID string, phone *string) user.User {
	t.Helper()
	u, err := store.Users().Create(context.Background(), user.User{
		Name: email, Email: email, PasswordHash: "x", Role: role,
		SchoolID: &schoolID, Phone: phone, IsActive: true,
	})
	require.NoError(t, err)
	return u
}

func TestCreate(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Create(ctx, validCreate(" dan01 "))
	require.NoError(t, err)
	assert.Equal(t, "DAN01", resp.Code)
	assert.Equal(t, 100, resp.BoundaryRadius)
	assert.Equal(t, school.DefaultState, resp.Address.State)
	assert.True(t, resp.IsActive)

	_, err = svc.Create(ctx, validCreate("DAN01"))
	assert.ErrorIs(t, err, school.ErrSchoolCodeExists)

	bad := validCreate("DAN02")
	bad.Latitude = 91
	radius := 20
	bad.BoundaryRadius = &radius
	_, err = svc.Create(ctx, bad)
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 2)
}

func TestGetByID_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.GetByID(context.Background(), missingID)
	assert.ErrorIs(t, err, school.ErrSchoolNotFound)
}

func TestUpdate_Principal(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validCreate("DAN01"))
	require.NoError(t, err)
	other, err := svc.Create(ctx, validCreate("GAY01"))
	require.NoError(t, err)

	teacher := addUser(t, store, "t@school.in", user.RoleTeacher, created.ID, nil)
	outsider := addUser(t, store, "p2@school.in", user.RolePrincipal, other.ID, nil)
	principal := addUser(t, store, "p@school.in", user.RolePrincipal, created.ID, nil)

	for _, id := range []string{teacher.ID, outsider.ID, missingID} {
		id := id
		_, err := svc.Update(ctx, school.UpdateSchoolRequest{ID: created.ID, PrincipalID: &id})
		assert.ErrorIs(t, err, school.ErrInvalidPrincipal)
	}

	name := "Renamed School"
	resp, err := svc.Update(ctx, school.UpdateSchoolRequest{ID: created.ID, Name: &name, PrincipalID: &principal.ID})
	require.NoError(t, err)
	assert.Equal(t, name, resp.Name)
	require.NotNil(t, resp.PrincipalID)
	assert.Equal(t, principal.ID, *resp.PrincipalID)
	require.NotNil(t, resp.PrincipalName)
	assert.Equal(t, principal.Name, *resp.PrincipalName)

	code := "GAY01"
	_, err = svc.Update(ctx, school.UpdateSchoolRequest{ID: created.ID, Code: &code})
	assert.ErrorIs(t, err, school.ErrSchoolCodeExists)
}

func TestDelete(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	empty, err := svc.Create(ctx, validCreate("EMP01"))
	require.NoError(t, err)
	staffed, err := svc.Create(ctx, validCreate("STF01"))
	require.NoError(t, err)
	addUser(t, store, "t@school.in", user.RoleTeacher, staffed.ID, nil)

	assert.ErrorIs(t, svc.Delete(ctx, staffed.ID), school.ErrSchoolHasMembers)
	require.NoError(t, svc.Delete(ctx, empty.ID))
	assert.ErrorIs(t, svc.Delete(ctx, empty.ID), school.ErrSchoolNotFound)
}

func TestUpdateBoundary(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validCreate("DAN01"))
	require.NoError(t, err)

	resp, err := svc.UpdateBoundary(ctx, school.UpdateBoundaryRequest{ID: created.ID, BoundaryRadius: 250})
	require.NoError(t, err)
	assert.Equal(t, 250, resp.BoundaryRadius)

	for _, radius := range []int{49, 10001} {
		_, err := svc.UpdateBoundary(ctx, school.UpdateBoundaryRequest{ID: created.ID, BoundaryRadius: radius})
		var verrs validator.ValidationErrors
		assert.ErrorAs(t, err, &verrs)
	}

	_, err = svc.UpdateBoundary(ctx, school.UpdateBoundaryRequest{ID: missingID, BoundaryRadius: 100})
	assert.ErrorIs(t, err, school.ErrSchoolNotFound)
}

func TestSendAlert(t *testing.T) {
	svc, store, sender := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validCreate("DAN01"))
	require.NoError(t, err)

	_, err = svc.SendAlert(ctx, created.ID)
	assert.ErrorIs(t, err, school.ErrNoRecipients)

	ok1, ok2, broken := "+919800000001", "+919800000002", "+919800000003"
	addUser(t, store, "t1@school.in", user.RoleTeacher, created.ID, &ok1)
	addUser(t, store, "t2@school.in", user.RoleTeacher, created.ID, &broken)
	addUser(t, store, "t3@school.in", user.RoleTeacher, created.ID, nil)
	addUser(t, store, "p@school.in", user.RolePrincipal, created.ID, &ok2)
	sender.fail[broken] = true

	resp, err := svc.SendAlert(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, school.AlertResponse{SchoolID: created.ID, Recipients: 3, Sent: 2, Failed: 1}, resp)

	require.Len(t, sender.sent, 2)
	for _, m := range sender.sent {
		assert.Equal(t, "Shikshak Watch Alert: Low attendance at Govt. Middle School Danapur. Please check in immediately.", m.Body)
	}

	_, err = svc.SendAlert(ctx, missingID)
	assert.ErrorIs(t, err, school.ErrSchoolNotFound)
}

func TestListAndDropdown_ActiveOnly(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	active, err := svc.Create(ctx, validCreate("ACT01"))
	require.NoError(t, err)
	inactive, err := svc.Create(ctx, validCreate("OFF01"))
	require.NoError(t, err)

	off := false
	_, err = svc.Update(ctx, school.UpdateSchoolRequest{ID: inactive.ID, IsActive: &off})
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, active.ID, list[0].ID)

	items, err := svc.Dropdown(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "ACT01", items[0].Code)
	assert.Equal(t, "Patna", items[0].Address.District)
}

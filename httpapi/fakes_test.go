package httpapi

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"homelist/auth"
	"homelist/property"
)

// In-memory repositories so handler tests run the real services end to end
// without a database.

type fakeUserRepo struct {
	users  map[string]auth.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]auth.User), nextID: 1}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, params auth.CreateUserParams) (auth.User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Email, params.Email) {
			return auth.User{}, auth.ErrDuplicateEmail
		}
	}
	id := fmt.Sprintf("user-%d", f.nextID)
	f.nextID++
	now := time.Now().UTC()
	token := params.VerificationToken
	expiry := params.VerificationExpiresAt
	u := auth.User{
		ID:                    id,
		Name:                  params.Name,
		Email:                 params.Email,
		PasswordHash:          params.PasswordHash,
		Phone:                 params.Phone,
		Role:                  params.Role,
		VerificationToken:     &token,
		VerificationExpiresAt: &expiry,
		AgencyName:            params.AgencyName,
		AgencyLicense:         params.AgencyLicense,
		AgencyAddress:         params.AgencyAddress,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	f.users[id] = u
	return u, nil
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (auth.User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return auth.User{}, auth.ErrUserNotFound
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id string) (auth.User, error) {
	u, ok := f.users[id]
	if !ok {
		return auth.User{}, auth.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) UpdateProfile(_ context.Context, id string, params auth.UpdateProfileParams) (auth.User, error) {
	u, ok := f.users[id]
	if !ok {
		return auth.User{}, auth.ErrUserNotFound
	}
	if params.Name != nil {
		u.Name = *params.Name
	}
	if params.Email != nil {
		u.Email = *params.Email
	}
	if params.Phone != nil {
		u.Phone = params.Phone
	}
	if params.Role != nil {
		u.Role = *params.Role
	}
	if params.AgencyName != nil {
		u.AgencyName = params.AgencyName
	}
	if params.AgencyLicense != nil {
		u.AgencyLicense = params.AgencyLicense
	}
	if params.AgencyAddress != nil {
		u.AgencyAddress = params.AgencyAddress
	}
	u.UpdatedAt = time.Now().UTC()
	f.users[id] = u
	return u, nil
}

func (f *fakeUserRepo) SetVerificationToken(_ context.Context, id, token string, expiresAt time.Time) (auth.User, error) {
	u, ok := f.users[id]
	if !ok {
		return auth.User{}, auth.ErrUserNotFound
	}
	u.VerificationToken = &token
	u.VerificationExpiresAt = &expiresAt
	f.users[id] = u
	return u, nil
}

func (f *fakeUserRepo) MarkVerified(_ context.Context, id string) (auth.User, error) {
	u, ok := f.users[id]
	if !ok {
		return auth.User{}, auth.ErrUserNotFound
	}
	u.IsVerified = true
	u.VerificationToken = nil
	u.VerificationExpiresAt = nil
	f.users[id] = u
	return u, nil
}

func (f *fakeUserRepo) SetVerified(_ context.Context, id string, verified bool) (auth.User, error) {
	u, ok := f.users[id]
	if !ok {
		return auth.User{}, auth.ErrUserNotFound
	}
	u.IsVerified = verified
	f.users[id] = u
	return u, nil
}

func (f *fakeUserRepo) ListUsers(_ context.Context) ([]auth.User, error) {
	out := make([]auth.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeUserRepo) DeleteUser(_ context.Context, id string) error {
	if _, ok := f.users[id]; !ok {
		return auth.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

type fakePropertyRepo struct {
	properties map[string]property.Property
	nextID     int
}

func newFakePropertyRepo() *fakePropertyRepo {
	return &fakePropertyRepo{properties: make(map[string]property.Property), nextID: 1}
}

func (f *fakePropertyRepo) Create(_ context.Context, params property.CreateParams) (property.Property, error) {
	id := fmt.Sprintf("prop-%d", f.nextID)
	f.nextID++
	now := time.Now().UTC()
	p := property.Property{
		ID:          id,
		UserID:      params.UserID,
		Title:       params.Title,
		Description: params.Description,
		Location:    params.Location,
		Price:       params.Price,
		Type:        params.Type,
		Status:      params.Status,
		Bedrooms:    params.Bedrooms,
		Bathrooms:   params.Bathrooms,
		Area:        params.Area,
		Features:    append([]string{}, params.Features...),
		Images:      append([]string{}, params.Images...),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.properties[id] = p
	return p, nil
}

func (f *fakePropertyRepo) GetAll(_ context.Context) ([]property.Property, error) {
	return f.filter(func(property.Property) bool { return true }), nil
}

func (f *fakePropertyRepo) GetByID(_ context.Context, id string) (property.Property, error) {
	p, ok := f.properties[id]
	if !ok {
		return property.Property{}, property.ErrNotFound
	}
	return p, nil
}

func (f *fakePropertyRepo) FindByUserID(_ context.Context, userID string) ([]property.Property, error) {
	return f.filter(func(p property.Property) bool { return p.UserID == userID }), nil
}

func (f *fakePropertyRepo) FindAllActive(_ context.Context) ([]property.Property, error) {
	return f.filter(func(p property.Property) bool { return p.Status == property.StatusActive }), nil
}

func (f *fakePropertyRepo) Update(_ context.Context, id string, params property.UpdateParams) (property.Property, error) {
	p, ok := f.properties[id]
	if !ok {
		return property.Property{}, property.ErrNotFound
	}
	p.Title = params.Title
	p.Description = params.Description
	p.Location = params.Location
	p.Price = params.Price
	p.Type = params.Type
	p.Status = params.Status
	p.Bedrooms = params.Bedrooms
	p.Bathrooms = params.Bathrooms
	p.Area = params.Area
	p.Features = append([]string{}, params.Features...)
	p.Images = append([]string{}, params.Images...)
	p.UpdatedAt = time.Now().UTC()
	f.properties[id] = p
	return p, nil
}

func (f *fakePropertyRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.properties[id]; !ok {
		return property.ErrNotFound
	}
	delete(f.properties, id)
	return nil
}

func (f *fakePropertyRepo) AddImages(_ context.Context, id string, images []string) (property.Property, error) {
	p, ok := f.properties[id]
	if !ok {
		return property.Property{}, property.ErrNotFound
	}
	p.Images = append(p.Images, images...)
	p.UpdatedAt = time.Now().UTC()
	f.properties[id] = p
	return p, nil
}

func (f *fakePropertyRepo) filter(keep func(property.Property) bool) []property.Property {
	out := make([]property.Property, 0, len(f.properties))
	for _, p := range f.properties {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

package handler

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ImSudipBiswas/swiftcart/internal/model"
	"github.com/ImSudipBiswas/swiftcart/internal/queue"
	"github.com/ImSudipBiswas/swiftcart/internal/repository"
)

// In-memory store fakes backing the handler tests. They implement the same
// not-found/duplicate contract as the MySQL repositories but keep everything
// in slices so tests can inspect state directly.

type memUserStore struct {
	users   []model.User
	nextID  int
	findErr error // injected into every lookup when set
}

func (s *memUserStore) Create(_ context.Context, u *model.User) error {
	s.nextID++
	if u.ID == "" {
		u.ID = fmt.Sprintf("user-%d", s.nextID)
	}
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	s.users = append(s.users, *u)
	return nil
}

func (s *memUserStore) find(match func(model.User) bool) (model.User, error) {
	if s.findErr != nil {
		return model.User{}, s.findErr
	}
	for _, u := range s.users {
		if match(u) {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (s *memUserStore) mutate(id string, fn func(*model.User)) error {
	for i := range s.users {
		if s.users[i].ID == id {
			fn(&s.users[i])
			s.users[i].UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *memUserStore) GetByID(_ context.Context, id string) (model.User, error) {
	return s.find(func(u model.User) bool { return u.ID == id })
}

func (s *memUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	return s.find(func(u model.User) bool { return u.Email == email })
}

func (s *memUserStore) GetByUsername(_ context.Context, username string) (model.User, error) {
	return s.find(func(u model.User) bool { return u.Username == username })
}

func (s *memUserStore) FindByEmailOrUsername(_ context.Context, email, username string) (model.User, error) {
	return s.find(func(u model.User) bool { return u.Email == email || u.Username == username })
}

func (s *memUserStore) Delete(_ context.Context, id string) error {
	for i := range s.users {
		if s.users[i].ID == id {
			s.users = append(s.users[:i], s.users[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *memUserStore) UpdateProfile(_ context.Context, id, name, username string) error {
	return s.mutate(id, func(u *model.User) { u.Name, u.Username = name, username })
}

func (s *memUserStore) UpdateImage(_ context.Context, id string, image *string) error {
	return s.mutate(id, func(u *model.User) { u.Image = image })
}

func (s *memUserStore) SaveRefreshToken(_ context.Context, id, refreshToken string) error {
	return s.mutate(id, func(u *model.User) { u.RefreshToken = &refreshToken })
}

func (s *memUserStore) ClearRefreshToken(_ context.Context, id string) error {
	return s.mutate(id, func(u *model.User) { u.RefreshToken = nil })
}

func (s *memUserStore) MarkEmailVerified(_ context.Context, id, refreshToken string, at time.Time) error {
	return s.mutate(id, func(u *model.User) {
		u.EmailVerified = true
		u.EmailVerifiedAt = &at
		u.EmailVerificationToken = nil
		u.RefreshToken = &refreshToken
	})
}

func (s *memUserStore) Count(_ context.Context, q string) (int, error) {
	n := 0
	for _, u := range s.users {
		if strings.Contains(u.Name, q) {
			n++
		}
	}
	return n, nil
}

func (s *memUserStore) List(_ context.Context, q string, offset, limit int) ([]model.User, error) {
	var out []model.User
	for _, u := range s.users {
		if strings.Contains(u.Name, q) {
			out = append(out, u)
		}
	}
	return window(out, offset, limit), nil
}

type memCategoryStore struct {
	categories []model.Category
	nextID     int
	nameErr    error // injected into GetByName when set
}

func (s *memCategoryStore) Create(_ context.Context, c *model.Category) error {
	s.nextID++
	if c.ID == "" {
		c.ID = fmt.Sprintf("category-%d", s.nextID)
	}
	s.categories = append(s.categories, *c)
	return nil
}

func (s *memCategoryStore) GetByID(_ context.Context, id string) (model.Category, error) {
	for _, c := range s.categories {
		if c.ID == id {
			return c, nil
		}
	}
	return model.Category{}, repository.ErrNotFound
}

func (s *memCategoryStore) GetByName(_ context.Context, name string) (model.Category, error) {
	if s.nameErr != nil {
		return model.Category{}, s.nameErr
	}
	for _, c := range s.categories {
		if c.Name == name {
			return c, nil
		}
	}
	return model.Category{}, repository.ErrNotFound
}

func (s *memCategoryStore) Update(_ context.Context, id, name, labelText string, description *string) error {
	for i := range s.categories {
		if s.categories[i].ID == id {
			s.categories[i].Name = name
			s.categories[i].LabelText = labelText
			s.categories[i].Description = description
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *memCategoryStore) UpdateImage(_ context.Context, id, image string) error {
	for i := range s.categories {
		if s.categories[i].ID == id {
			s.categories[i].Image = image
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *memCategoryStore) Delete(_ context.Context, id string) error {
	for i := range s.categories {
		if s.categories[i].ID == id {
			s.categories = append(s.categories[:i], s.categories[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *memCategoryStore) Count(_ context.Context, q string) (int, error) {
	n := 0
	for _, c := range s.categories {
		if strings.Contains(c.Name, q) || strings.Contains(c.LabelText, q) {
			n++
		}
	}
	return n, nil
}

func (s *memCategoryStore) List(_ context.Context, q string, offset, limit int) ([]model.Category, error) {
	var out []model.Category
	for _, c := range s.categories {
		if strings.Contains(c.Name, q) || strings.Contains(c.LabelText, q) {
			out = append(out, c)
		}
	}
	return window(out, offset, limit), nil
}

type memColorStore struct {
	colors      []model.Color
	nextID      int
	conflictErr error // injected into FindConflict when set
}

func (s *memColorStore) Create(_ context.Context, c *model.Color) error {
	s.nextID++
	if c.ID == "" {
		c.ID = fmt.Sprintf("color-%d", s.nextID)
	}
	s.colors = append(s.colors, *c)
	return nil
}

func (s *memColorStore) GetByID(_ context.Context, id string) (model.Color, error) {
	for _, c := range s.colors {
		if c.ID == id {
			return c, nil
		}
	}
	return model.Color{}, repository.ErrNotFound
}

func (s *memColorStore) FindConflict(_ context.Context, categoryID, name, hex string) (model.Color, error) {
	if s.conflictErr != nil {
		return model.Color{}, s.conflictErr
	}
	for _, c := range s.colors {
		if c.CategoryID == categoryID && (c.Name == name || c.Hex == hex) {
			return c, nil
		}
	}
	return model.Color{}, repository.ErrNotFound
}

func (s *memColorStore) Update(_ context.Context, id, name, hex string) error {
	for i := range s.colors {
		if s.colors[i].ID == id {
			s.colors[i].Name, s.colors[i].Hex = name, hex
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *memColorStore) Delete(_ context.Context, id string) error {
	for i := range s.colors {
		if s.colors[i].ID == id {
			s.colors = append(s.colors[:i], s.colors[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *memColorStore) ListByCategory(_ context.Context, categoryID string) ([]model.Color, error) {
	var out []model.Color
	for _, c := range s.colors {
		if c.CategoryID == categoryID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *memColorStore) Count(_ context.Context, q string) (int, error) {
	n := 0
	for _, c := range s.colors {
		if strings.Contains(c.Name, q) || strings.Contains(c.Hex, q) {
			n++
		}
	}
	return n, nil
}

func (s *memColorStore) List(_ context.Context, q string, offset, limit int) ([]model.Color, error) {
	var out []model.Color
	for _, c := range s.colors {
		if strings.Contains(c.Name, q) || strings.Contains(c.Hex, q) {
			out = append(out, c)
		}
	}
	return window(out, offset, limit), nil
}

type memSizeStore struct {
	sizes       []model.Size
	nextID      int
	conflictErr error // injected into FindConflict when set
}

func (s *memSizeStore) Create(_ context.Context, sz *model.Size) error {
	s.nextID++
	if sz.ID == "" {
		sz.ID = fmt.Sprintf("size-%d", s.nextID)
	}
	s.sizes = append(s.sizes, *sz)
	return nil
}

func (s *memSizeStore) GetByID(_ context.Context, id string) (model.Size, error) {
	for _, sz := range s.sizes {
		if sz.ID == id {
			return sz, nil
		}
	}
	return model.Size{}, repository.ErrNotFound
}

func (s *memSizeStore) FindConflict(_ context.Context, categoryID, name, value string) (model.Size, error) {
	if s.conflictErr != nil {
		return model.Size{}, s.conflictErr
	}
	for _, sz := range s.sizes {
		if sz.CategoryID == categoryID && (sz.Name == name || sz.Value == value) {
			return sz, nil
		}
	}
	return model.Size{}, repository.ErrNotFound
}

func (s *memSizeStore) Update(_ context.Context, id, name, value string) error {
	for i := range s.sizes {
		if s.sizes[i].ID == id {
			s.sizes[i].Name, s.sizes[i].Value = name, value
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *memSizeStore) Delete(_ context.Context, id string) error {
	for i := range s.sizes {
		if s.sizes[i].ID == id {
			s.sizes = append(s.sizes[:i], s.sizes[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *memSizeStore) ListByCategory(_ context.Context, categoryID string) ([]model.Size, error) {
	var out []model.Size
	for _, sz := range s.sizes {
		if sz.CategoryID == categoryID {
			out = append(out, sz)
		}
	}
	return out, nil
}

func (s *memSizeStore) Count(_ context.Context, q string) (int, error) {
	n := 0
	for _, sz := range s.sizes {
		if strings.Contains(sz.Name, q) || strings.Contains(sz.Value, q) {
			n++
		}
	}
	return n, nil
}

func (s *memSizeStore) List(_ context.Context, q string, offset, limit int) ([]model.Size, error) {
	var out []model.Size
	for _, sz := range s.sizes {
		if strings.Contains(sz.Name, q) || strings.Contains(sz.Value, q) {
			out = append(out, sz)
		}
	}
	return window(out, offset, limit), nil
}

func window[T any](all []T, offset, limit int) []T {
	if offset >= len(all) {
		return nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}

// stubUploader records uploads/deletes and can be told to fail.
type stubUploader struct {
	uploads   []string // filenames, in order
	deletes   []string // urls, in order
	uploadErr error
	deleteErr error
}

func (s *stubUploader) Upload(_ context.Context, _ io.Reader, filename, folder string) (string, error) {
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	s.uploads = append(s.uploads, filename)
	return "https://cdn.example.com/" + folder + "/" + filename, nil
}

func (s *stubUploader) Delete(_ context.Context, url, _ string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deletes = append(s.deletes, url)
	return nil
}

// stubMail records published verification events.
type stubMail struct {
	events     []queue.VerificationMailEvent
	publishErr error
}

func (s *stubMail) PublishVerificationMail(_ context.Context, ev queue.VerificationMailEvent) error {
	if s.publishErr != nil {
		return s.publishErr
	}
	s.events = append(s.events, ev)
	return nil
}

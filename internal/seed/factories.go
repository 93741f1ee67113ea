// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/slug"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed presets and tests.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
	// slugs already handed out this run, so generated posts never collide
	// before they reach the database's unique index
	usedSlugs map[string]int
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:        db,
		opts:      opts,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())), // #nosec G404: acceptable for seeding
		usedSlugs: make(map[string]int),
	}
}

// uniqueSlug suffixes the base the same way the API does on collision, but
// tracked in memory so a batch run needs no existence queries.
func (f *Factory) uniqueSlug(title string) string {
	base := slug.Generate(title)
	n := f.usedSlugs[base]
	f.usedSlugs[base] = n + 1
	if n == 0 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, n+1)
}

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username: gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:    gofakeit.Email(),
		Role:     models.RoleReader,
		IsActive: true,
		Bio:      gofakeit.Sentence(10),
		Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
	}

	// Password handling: allow skipping bcrypt in dev fast mode
	if f.opts.SkipBcrypt {
		user.Password = "password123"
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user.Password = string(hashedPassword)
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateAuthor is CreateUser with the author role applied first.
func (f *Factory) CreateAuthor(overrides ...func(*models.User)) (*models.User, error) {
	withRole := append([]func(*models.User){func(u *models.User) {
		u.Role = models.RoleAuthor
	}}, overrides...)
	return f.CreateUser(withRole...)
}

// BuildPost constructs a post for the given author without persisting it.
// Useful for batching.
func (f *Factory) BuildPost(author *models.User, overrides ...func(*models.Post)) *models.Post {
	title := gofakeit.Sentence(5)
	post := &models.Post{
		Title:   title,
		Slug:    f.uniqueSlug(title),
		Content: gofakeit.Paragraph(3, 5, 12, "\n\n"),
		Status:  models.PostStatusPublished,
		UserID:  author.ID,
	}

	// Roughly one post in four stays a draft.
	if f.rng.Intn(4) == 0 {
		post.Status = models.PostStatusDraft
	}

	// realistic created_at spread
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := f.rng.Intn(maxDays)
	hoursBack := f.rng.Intn(24)
	post.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePost constructs and persists a sample `models.Post` for the author.
func (f *Factory) CreatePost(author *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := f.BuildPost(author, overrides...)
	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreatePostsBatch persists multiple posts in a single DB call.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	return f.db.Create(&posts).Error
}

// CreateComment constructs and persists a sample `models.Comment` on the
// provided post authored by the provided user. Pass a parent to create a
// reply; the parent must be top-level.
func (f *Factory) CreateComment(user *models.User, post *models.Post, parent *models.Comment, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		Text:   gofakeit.Sentence(8),
		UserID: user.ID,
		PostID: post.ID,
	}
	if parent != nil {
		parentID := parent.ID
		if parent.ParentID != nil {
			parentID = *parent.ParentID
		}
		comment.ParentID = &parentID
	}

	for _, override := range overrides {
		override(comment)
	}

	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreatePostLike persists a like from `user` on `post`.
func (f *Factory) CreatePostLike(user *models.User, post *models.Post) error {
	like := &models.Like{
		UserID: user.ID,
		PostID: &post.ID,
	}
	return f.db.Create(like).Error
}

// CreateCommentLike persists a like from `user` on `comment`.
func (f *Factory) CreateCommentLike(user *models.User, comment *models.Comment) error {
	like := &models.Like{
		UserID:    user.ID,
		CommentID: &comment.ID,
	}
	return f.db.Create(like).Error
}

// CreateSave persists `post` into `user`'s saved list.
func (f *Factory) CreateSave(user *models.User, post *models.Post) error {
	saved := &models.SavedPost{
		UserID:  user.ID,
		PostID:  post.ID,
		SavedAt: time.Now(),
	}
	return f.db.Create(saved).Error
}

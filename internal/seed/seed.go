package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"inkwell/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	// SkipBcrypt stores plaintext passwords; dev fast mode only.
	SkipBcrypt bool
	// MaxDays bounds how far back generated timestamps spread.
	MaxDays int
}

// Seeder populates the database with realistic demo data.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
	rng     *rand.Rand
}

// NewSeeder creates a Seeder with its own factory.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{
		db:      db,
		factory: NewFactory(db, opts),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())), // #nosec G404: acceptable for seeding
	}
}

// ClearAll removes seedable data. Deletion order respects foreign keys:
// interactions first, then comments, posts, taxonomy, users.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing existing data...")
	for _, stmt := range []string{
		"DELETE FROM likes",
		"DELETE FROM saved_posts",
		"DELETE FROM comments",
		"DELETE FROM post_categories",
		"DELETE FROM post_tags",
		"DELETE FROM posts",
		"DELETE FROM categories",
		"DELETE FROM tags",
		"DELETE FROM users",
	} {
		if err := s.db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("clear data: %w", err)
		}
	}
	return nil
}

// Apply runs the full preset: taxonomy, accounts, posts, comment threads,
// likes and saves. The admin login is always admin@inkwell.dev / password123.
func (s *Seeder) Apply(preset Preset) error {
	if err := preset.Validate(); err != nil {
		return err
	}
	log.Printf("Seeding preset %q: %d readers, %d authors, %d posts/author...",
		preset.Name, preset.Readers, preset.Authors, preset.PostsPerAuthor)

	if err := Taxonomy(s.db); err != nil {
		return fmt.Errorf("seed taxonomy: %w", err)
	}

	admin, err := s.createAdmin()
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	authors, err := s.createAuthors(preset.Authors)
	if err != nil {
		return fmt.Errorf("create authors: %w", err)
	}
	readers, err := s.createReaders(preset.Readers)
	if err != nil {
		return fmt.Errorf("create readers: %w", err)
	}
	log.Printf("✓ %d accounts created", 1+len(authors)+len(readers))

	posts, err := s.createPosts(authors, preset.PostsPerAuthor)
	if err != nil {
		return fmt.Errorf("create posts: %w", err)
	}
	log.Printf("✓ %d posts created", len(posts))

	everyone := append([]*models.User{admin}, append(authors, readers...)...)

	commentCount, err := s.createThreads(everyone, posts, preset)
	if err != nil {
		return fmt.Errorf("create comments: %w", err)
	}
	log.Printf("✓ %d comments created", commentCount)

	likeCount, saveCount, err := s.createEngagement(everyone, posts, preset)
	if err != nil {
		return fmt.Errorf("create engagement: %w", err)
	}
	log.Printf("✓ %d likes and %d saves created", likeCount, saveCount)

	return nil
}

func (s *Seeder) createAdmin() (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return s.factory.CreateUser(func(u *models.User) {
		u.Username = "admin"
		u.Email = "admin@inkwell.dev"
		u.Password = string(hashed)
		u.Role = models.RoleAdmin
		u.Bio = "Keeps the lights on."
	})
}

func (s *Seeder) createAuthors(n int) ([]*models.User, error) {
	authors := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		author, err := s.factory.CreateAuthor()
		if err != nil {
			return nil, err
		}
		authors = append(authors, author)
	}
	return authors, nil
}

func (s *Seeder) createReaders(n int) ([]*models.User, error) {
	readers := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		reader, err := s.factory.CreateUser()
		if err != nil {
			return nil, err
		}
		readers = append(readers, reader)
	}
	return readers, nil
}

// createPosts builds each author's posts, batches the inserts, then attaches
// one category and up to three tags per post.
func (s *Seeder) createPosts(authors []*models.User, perAuthor int) ([]*models.Post, error) {
	posts := make([]*models.Post, 0, len(authors)*perAuthor)
	for _, author := range authors {
		for i := 0; i < perAuthor; i++ {
			posts = append(posts, s.factory.BuildPost(author))
		}
	}
	if err := s.factory.CreatePostsBatch(posts); err != nil {
		return nil, err
	}

	var categories []models.Category
	if err := s.db.Find(&categories).Error; err != nil {
		return nil, err
	}
	var tags []models.Tag
	if err := s.db.Find(&tags).Error; err != nil {
		return nil, err
	}

	for _, post := range posts {
		if len(categories) > 0 {
			category := categories[s.rng.Intn(len(categories))]
			if err := s.db.Model(post).Association("Categories").Append(&category); err != nil {
				return nil, err
			}
		}
		if len(tags) > 0 {
			picked := s.pickTags(tags, 1+s.rng.Intn(3))
			if err := s.db.Model(post).Association("Tags").Append(&picked); err != nil {
				return nil, err
			}
		}
	}
	return posts, nil
}

func (s *Seeder) pickTags(tags []models.Tag, n int) []models.Tag {
	if n > len(tags) {
		n = len(tags)
	}
	idx := s.rng.Perm(len(tags))[:n]
	picked := make([]models.Tag, 0, n)
	for _, i := range idx {
		picked = append(picked, tags[i])
	}
	return picked
}

// createThreads writes top-level comments on published posts and converts a
// fraction of the remaining quota into replies, keeping every thread at two
// levels.
func (s *Seeder) createThreads(users []*models.User, posts []*models.Post, preset Preset) (int, error) {
	total := 0
	for _, post := range posts {
		if post.Status != models.PostStatusPublished {
			continue
		}
		var topLevel []*models.Comment
		for i := 0; i < preset.CommentsPerPost; i++ {
			commenter := users[s.rng.Intn(len(users))]

			var parent *models.Comment
			if len(topLevel) > 0 && s.rng.Float64() < preset.ReplyRate {
				parent = topLevel[s.rng.Intn(len(topLevel))]
			}

			comment, err := s.factory.CreateComment(commenter, post, parent)
			if err != nil {
				return total, err
			}
			if parent == nil {
				topLevel = append(topLevel, comment)
			}
			total++
		}
	}
	return total, nil
}

// createEngagement sprinkles likes and saves over published posts. Each
// (user, post) pair is visited at most once so the unique indexes never trip.
func (s *Seeder) createEngagement(users []*models.User, posts []*models.Post, preset Preset) (likes, saves int, err error) {
	for _, post := range posts {
		if post.Status != models.PostStatusPublished {
			continue
		}
		for _, user := range users {
			if s.rng.Float64() < preset.LikeRate {
				if err := s.factory.CreatePostLike(user, post); err != nil {
					return likes, saves, err
				}
				likes++
			}
			if s.rng.Float64() < preset.SaveRate {
				if err := s.factory.CreateSave(user, post); err != nil {
					return likes, saves, err
				}
				saves++
			}
		}
	}
	return likes, saves, nil
}

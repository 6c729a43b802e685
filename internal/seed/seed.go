// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"harbor/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

// Seed populates the database with test data. Derived counters are resynced
// at the end so seeded data satisfies the counter invariant from the start.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Starting database seeding with %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway...")
		}
	}

	f := NewFactory(db)

	users, err := f.CreateUsers(opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("%d test users created", len(users))

	posts, err := f.CreatePosts(users, opts.NumPosts)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("%d posts created", len(posts))

	comments, err := f.CreateComments(users, posts)
	if err != nil {
		return fmt.Errorf("failed to create comments: %w", err)
	}
	log.Printf("%d comments created", len(comments))

	likes, err := f.CreateLikes(users, posts, comments)
	if err != nil {
		return fmt.Errorf("failed to create likes: %w", err)
	}
	log.Printf("%d likes created", likes)

	if err := resyncCounters(db); err != nil {
		return fmt.Errorf("failed to resync counters: %w", err)
	}

	log.Println("Database seeding completed successfully!")
	return nil
}

func clearData(db *gorm.DB) error {
	log.Println("Clearing existing data...")
	sql := `TRUNCATE TABLE audit_logs, sessions, suppressions, messages, mentions, notifications, likes, comments, posts, users RESTART IDENTITY CASCADE;`
	return db.Exec(sql).Error
}

// resyncCounters overwrites every derived counter from the authoritative
// child counts in three statements.
func resyncCounters(db *gorm.DB) error {
	stmts := []string{
		`UPDATE posts SET likes_count = (SELECT COUNT(*) FROM likes WHERE likes.content_type = 'post' AND likes.content_id = posts.id)`,
		`UPDATE posts SET comments_count = (SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL)`,
		`UPDATE comments SET likes_count = (SELECT COUNT(*) FROM likes WHERE likes.content_type = 'comment' AND likes.content_id = comments.id)`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db *gorm.DB
	r  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	//nolint:gosec // Weak random number generator is fine for seeding
	return &Factory{db: db, r: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// CreateUser constructs and persists a sample user.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username: gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:    gofakeit.Email(),
		Bio:      gofakeit.Sentence(10),
		Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
	}

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user.PasswordHash = string(hashedPassword)

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateUsers persists count users. The first user created is an admin named
// "harbormaster" so the admin endpoints are reachable out of the box.
func (f *Factory) CreateUsers(count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)

	admin, err := f.CreateUser(func(u *models.User) {
		u.Username = "harbormaster"
		u.Email = "admin@example.com"
		u.IsAdmin = true
	})
	if err != nil {
		return nil, err
	}
	users = append(users, admin)

	for i := 1; i < count; i++ {
		user, err := f.CreateUser()
		if err != nil {
			log.Printf("Failed to create user: %v", err)
			continue
		}
		users = append(users, user)

		if i%100 == 0 {
			log.Printf("Created %d users...", i)
		}
	}
	return users, nil
}

// CreatePost constructs and persists a sample post for the given user.
// Roughly one post in five mentions another seeded user.
func (f *Factory) CreatePost(author *models.User, users []*models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	body := gofakeit.Paragraph(1, 3, 8, "\n")
	if len(users) > 1 && f.r.Float32() < 0.2 {
		mentioned := users[f.r.Intn(len(users))]
		body = fmt.Sprintf("@%s %s", mentioned.Username, body)
	}

	post := &models.Post{
		Body:     body,
		AuthorID: author.ID,
	}

	// realistic created_at spread over the last 90 days
	daysBack := f.r.Intn(90)
	hoursBack := f.r.Intn(24)
	post.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)

	for _, override := range overrides {
		override(post)
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreatePosts persists count posts spread across the given users.
func (f *Factory) CreatePosts(users []*models.User, count int) ([]*models.Post, error) {
	if len(users) == 0 {
		return nil, nil
	}
	posts := make([]*models.Post, 0, count)
	for i := 0; i < count; i++ {
		author := users[f.r.Intn(len(users))]
		post, err := f.CreatePost(author, users)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)

		if i%100 == 0 && i > 0 {
			log.Printf("Created %d posts...", i)
		}
	}
	return posts, nil
}

// CreateComment constructs and persists a sample comment on the provided post.
func (f *Factory) CreateComment(author *models.User, post *models.Post, parent *models.Comment, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		Body:     gofakeit.Sentence(8),
		PostID:   post.ID,
		AuthorID: author.ID,
	}
	if parent != nil {
		comment.ParentID = &parent.ID
	}

	for _, override := range overrides {
		override(comment)
	}

	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateComments spreads comments and one level of replies over the posts.
func (f *Factory) CreateComments(users []*models.User, posts []*models.Post) ([]*models.Comment, error) {
	var comments []*models.Comment
	for _, post := range posts {
		n := f.r.Intn(4)
		for i := 0; i < n; i++ {
			author := users[f.r.Intn(len(users))]
			comment, err := f.CreateComment(author, post, nil)
			if err != nil {
				return nil, err
			}
			comments = append(comments, comment)

			// about a third of comments get a reply
			if f.r.Float32() < 0.3 {
				replier := users[f.r.Intn(len(users))]
				reply, err := f.CreateComment(replier, post, comment)
				if err != nil {
					return nil, err
				}
				comments = append(comments, reply)
			}
		}
	}
	return comments, nil
}

// CreateLike persists a like from user on the given content.
func (f *Factory) CreateLike(user *models.User, ref models.ContentRef) error {
	like := &models.Like{
		UserID:      user.ID,
		ContentType: ref.Type,
		ContentID:   ref.ID,
	}
	return f.db.Create(like).Error
}

// CreateLikes sprinkles likes over posts and comments, skipping duplicates.
func (f *Factory) CreateLikes(users []*models.User, posts []*models.Post, comments []*models.Comment) (int, error) {
	created := 0
	for _, post := range posts {
		n := f.r.Intn(len(users))
		for i := 0; i < n; i++ {
			user := users[f.r.Intn(len(users))]
			if err := f.CreateLike(user, models.PostRef(post.ID)); err != nil {
				continue // duplicate (user, content) pair
			}
			created++
		}
	}
	for _, comment := range comments {
		if f.r.Float32() < 0.4 {
			user := users[f.r.Intn(len(users))]
			if err := f.CreateLike(user, models.CommentRef(comment.ID)); err != nil {
				continue
			}
			created++
		}
	}
	return created, nil
}

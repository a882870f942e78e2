package repositories

import (
	"github.com/inkwellhq/inkwell/internal/models"
	"gorm.io/gorm"
)

// feedOrder is the total order every feed shares: newest first, ties broken
// by id so pagination stays stable across pages.
const feedOrder = "created_at DESC, id DESC"

// PostRepository defines the interface for post data operations. The feed
// methods return posts with Author and Group resolved in the same fetch.
type PostRepository interface {
	CreatePost(post *models.Post) error
	GetPostByID(id uint) (*models.Post, error)
	GetPostWithComments(id uint) (*models.Post, error)
	UpdatePost(post *models.Post) error
	DeletePost(id uint) error

	GlobalFeed(offset, limit int) ([]models.Post, error)
	GlobalFeedCount() (int64, error)
	GroupFeed(groupID uint, offset, limit int) ([]models.Post, error)
	GroupFeedCount(groupID uint) (int64, error)
	AuthorFeed(authorID uint, offset, limit int) ([]models.Post, error)
	AuthorFeedCount(authorID uint) (int64, error)
	FollowedFeed(viewerID uint, offset, limit int) ([]models.Post, error)
	FollowedFeedCount(viewerID uint) (int64, error)
}

// PostgresPostRepository implements PostRepository for PostgreSQL
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

// CreatePost creates a new post
func (r *PostgresPostRepository) CreatePost(post *models.Post) error {
	return r.db.Create(post).Error
}

// GetPostByID retrieves a post with its author and group
func (r *PostgresPostRepository) GetPostByID(id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.Preload("Author").Preload("Group").First(&post, id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// GetPostWithComments retrieves a post with author, group and its comments,
// comment authors included, newest comment first.
func (r *PostgresPostRepository) GetPostWithComments(id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.Preload("Author").Preload("Group").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC, id DESC")
		}).
		Preload("Comments.Author").
		First(&post, id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// UpdatePost persists changes to an existing post
func (r *PostgresPostRepository) UpdatePost(post *models.Post) error {
	return r.db.Save(post).Error
}

// DeletePost deletes a post and cascades to its comments in one transaction.
func (r *PostgresPostRepository) DeletePost(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, id).Error
	})
}

func (r *PostgresPostRepository) feed() *gorm.DB {
	return r.db.Model(&models.Post{}).
		Preload("Author").Preload("Group").
		Order(feedOrder)
}

// GlobalFeed returns a page of all posts, newest first
func (r *PostgresPostRepository) GlobalFeed(offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.feed().Offset(offset).Limit(limit).Find(&posts).Error
	return posts, err
}

// GlobalFeedCount returns the total number of posts
func (r *PostgresPostRepository) GlobalFeedCount() (int64, error) {
	var count int64
	err := r.db.Model(&models.Post{}).Count(&count).Error
	return count, err
}

// GroupFeed returns a page of a group's posts, newest first
func (r *PostgresPostRepository) GroupFeed(groupID uint, offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.feed().Where("group_id = ?", groupID).Offset(offset).Limit(limit).Find(&posts).Error
	return posts, err
}

// GroupFeedCount returns the number of posts in a group
func (r *PostgresPostRepository) GroupFeedCount(groupID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Post{}).Where("group_id = ?", groupID).Count(&count).Error
	return count, err
}

// AuthorFeed returns a page of an author's posts, newest first
func (r *PostgresPostRepository) AuthorFeed(authorID uint, offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.feed().Where("author_id = ?", authorID).Offset(offset).Limit(limit).Find(&posts).Error
	return posts, err
}

// AuthorFeedCount returns the number of posts by an author
func (r *PostgresPostRepository) AuthorFeedCount(authorID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Post{}).Where("author_id = ?", authorID).Count(&count).Error
	return count, err
}

func (r *PostgresPostRepository) followedAuthors(viewerID uint) *gorm.DB {
	return r.db.Table("follows").Select("author_id").Where("user_id = ?", viewerID)
}

// FollowedFeed returns a page of posts by authors the viewer follows,
// newest first. A viewer who follows nobody gets an empty slice.
func (r *PostgresPostRepository) FollowedFeed(viewerID uint, offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.feed().Where("author_id IN (?)", r.followedAuthors(viewerID)).
		Offset(offset).Limit(limit).Find(&posts).Error
	return posts, err
}

// FollowedFeedCount returns the number of posts by followed authors
func (r *PostgresPostRepository) FollowedFeedCount(viewerID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Post{}).
		Where("author_id IN (?)", r.followedAuthors(viewerID)).
		Count(&count).Error
	return count, err
}

package database

import (
	"context"
	"errors"
	"strings"

	"jogakzip/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// pgForeignKeyViolation is the SQLSTATE Postgres reports for a broken FK.
const pgForeignKeyViolation = "23503"

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *GormStore) CreateGroup(ctx context.Context, group *models.Group) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(group).Error
}

func (s *GormStore) FindGroup(ctx context.Context, id uint) (*models.Group, error) {
	var group models.Group
	if err := s.db.WithContext(ctx).First(&group, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &group, nil
}

func (s *GormStore) ListGroups(ctx context.Context, opts ListOptions) ([]models.Group, int64, error) {
	filter := func() *gorm.DB {
		query := s.db.WithContext(ctx).Model(&models.Group{})
		if opts.PublicOnly {
			query = query.Where("is_public = ?", true)
		}
		if opts.Keyword != "" {
			query = query.Where("name ILIKE ?", likePattern(opts.Keyword))
		}
		return query
	}

	var total int64
	if err := filter().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var groups []models.Group
	query := filter().Order(groupOrder(opts.SortBy))
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}
	if err := query.Find(&groups).Error; err != nil {
		return nil, 0, err
	}
	return groups, total, nil
}

func (s *GormStore) UpdateGroup(ctx context.Context, id uint, changes []Assignment) (int64, error) {
	return s.update(ctx, &models.Group{}, id, changes)
}

func (s *GormStore) DeleteGroup(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var group models.Group
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&group, id).Error; err != nil {
			return err
		}

		var posts int64
		if err := tx.Model(&models.Post{}).Where("group_id = ?", id).Count(&posts).Error; err != nil {
			return err
		}
		if posts > 0 {
			return ErrHasDependents
		}

		return tx.Delete(&models.Group{}, id).Error
	})
	if isForeignKeyViolation(err) {
		return ErrHasDependents
	}
	return translateError(err)
}

func (s *GormStore) IncrementGroupLikes(ctx context.Context, id uint) error {
	return s.increment(ctx, &models.Group{}, id, "likes_count", 1)
}

func (s *GormStore) CreatePost(ctx context.Context, post *models.Post) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Group{}).Where("id = ?", post.GroupID).
			UpdateColumn("post_count", gorm.Expr("post_count + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrParentNotFound
		}
		return tx.Omit(clause.Associations).Create(post).Error
	})
	if isForeignKeyViolation(err) {
		return ErrParentNotFound
	}
	return translateError(err)
}

func (s *GormStore) FindPost(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &post, nil
}

func (s *GormStore) ListPosts(ctx context.Context, groupID uint, opts ListOptions) ([]models.Post, int64, error) {
	filter := func() *gorm.DB {
		query := s.db.WithContext(ctx).Model(&models.Post{}).Where("group_id = ?", groupID)
		if opts.PublicOnly {
			query = query.Where("is_public = ?", true)
		}
		if opts.Keyword != "" {
			query = query.Where("title ILIKE ?", likePattern(opts.Keyword))
		}
		return query
	}

	var total int64
	if err := filter().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []models.Post
	query := filter().Order(postOrder(opts.SortBy))
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}
	if err := query.Find(&posts).Error; err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (s *GormStore) UpdatePost(ctx context.Context, id uint, changes []Assignment) (int64, error) {
	return s.update(ctx, &models.Post{}, id, changes)
}

func (s *GormStore) DeletePost(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&post, id).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Post{}, id).Error; err != nil {
			return err
		}
		return tx.Model(&models.Group{}).Where("id = ? AND post_count > 0", post.GroupID).
			UpdateColumn("post_count", gorm.Expr("post_count - ?", 1)).Error
	})
	return translateError(err)
}

func (s *GormStore) IncrementPostLikes(ctx context.Context, id uint) error {
	return s.increment(ctx, &models.Post{}, id, "likes_count", 1)
}

func (s *GormStore) CreateComment(ctx context.Context, comment *models.Comment) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Post{}).Where("id = ?", comment.PostID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrParentNotFound
		}
		return tx.Omit(clause.Associations).Create(comment).Error
	})
	if isForeignKeyViolation(err) {
		return ErrParentNotFound
	}
	return translateError(err)
}

func (s *GormStore) FindComment(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := s.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &comment, nil
}

func (s *GormStore) ListComments(ctx context.Context, postID uint, opts ListOptions) ([]models.Comment, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Comment{}).Where("post_id = ?", postID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []models.Comment
	query := s.db.WithContext(ctx).Where("post_id = ?", postID).
		Order("created_at ASC, id ASC")
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}
	if err := query.Find(&comments).Error; err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

func (s *GormStore) UpdateComment(ctx context.Context, id uint, changes []Assignment) (int64, error) {
	return s.update(ctx, &models.Comment{}, id, changes)
}

func (s *GormStore) DeleteComment(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		if err := tx.First(&comment, id).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Comment{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		return tx.Model(&models.Post{}).Where("id = ? AND comment_count > 0", comment.PostID).
			UpdateColumn("comment_count", gorm.Expr("comment_count - ?", 1)).Error
	})
	return translateError(err)
}

func (s *GormStore) update(ctx context.Context, model interface{}, id uint, changes []Assignment) (int64, error) {
	if len(changes) == 0 {
		return 0, nil
	}
	values := make(map[string]interface{}, len(changes))
	for _, change := range changes {
		values[change.Column] = change.Value
	}

	res := s.db.WithContext(ctx).Model(model).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// increment is a single UPDATE so concurrent likes never lose a count.
func (s *GormStore) increment(ctx context.Context, model interface{}, id uint, column string, delta int) error {
	res := s.db.WithContext(ctx).Model(model).Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func groupOrder(sortBy string) string {
	switch sortBy {
	case SortMostPosted:
		return "post_count DESC, created_at DESC, id DESC"
	case SortMostLiked:
		return "likes_count DESC, created_at DESC, id DESC"
	case SortMostBadge:
		return "badge_count DESC, created_at DESC, id DESC"
	default:
		return "created_at DESC, id DESC"
	}
}

func postOrder(sortBy string) string {
	switch sortBy {
	case SortMostCommented:
		return "comment_count DESC, created_at DESC, id DESC"
	case SortMostLiked:
		return "likes_count DESC, created_at DESC, id DESC"
	default:
		return "created_at DESC, id DESC"
	}
}

func likePattern(keyword string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(keyword)
	return "%" + escaped + "%"
}

func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}

package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/thereayou/microblog/internal/models"
	"github.com/thereayou/microblog/internal/search"
	"gorm.io/gorm"
)

const postsOrder = "posts.timestamp DESC, posts.id DESC"

func (d *Database) SavePost(ctx context.Context, post *models.Post) error {
	if err := d.db.WithContext(ctx).Create(post).Error; err != nil {
		return errors.Wrap(err, "database.SavePost")
	}
	return nil
}

func (d *Database) GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var post models.Post
	if err := d.db.WithContext(ctx).Preload("Author").First(&post, "id = ?", id).Error; err != nil {
		return nil, errors.Wrap(err, "database.GetPost")
	}
	return &post, nil
}

// FollowingPosts лента пользователя: его собственные посты и посты тех, на кого он подписан.
// Соединение с таблицей подписок может размножить строки, поэтому они схлопываются по posts.id.
func (d *Database) FollowingPosts(ctx context.Context, userID uuid.UUID, page, perPage int) (Page[models.Post], error) {
	base := func() *gorm.DB {
		return d.db.WithContext(ctx).Model(&models.Post{}).
			Select("posts.*").
			Joins("JOIN users AS author ON author.id = posts.user_id").
			Joins("LEFT JOIN followers AS follower ON follower.followed_id = author.id").
			Where("follower.follower_id = ? OR author.id = ?", userID, userID).
			Group("posts.id")
	}

	result, err := paginate[models.Post](d.db.WithContext(ctx), base, postsOrder, []string{"Author"}, page, perPage)
	return result, errors.Wrap(err, "database.FollowingPosts")
}

// ExplorePosts все посты, новые сверху
func (d *Database) ExplorePosts(ctx context.Context, page, perPage int) (Page[models.Post], error) {
	base := func() *gorm.DB {
		return d.db.WithContext(ctx).Model(&models.Post{}).Select("posts.*")
	}

	result, err := paginate[models.Post](d.db.WithContext(ctx), base, postsOrder, []string{"Author"}, page, perPage)
	return result, errors.Wrap(err, "database.ExplorePosts")
}

func (d *Database) UserPosts(ctx context.Context, userID uuid.UUID, page, perPage int) (Page[models.Post], error) {
	base := func() *gorm.DB {
		return d.db.WithContext(ctx).Model(&models.Post{}).
			Select("posts.*").
			Where("posts.user_id = ?", userID)
	}

	result, err := paginate[models.Post](d.db.WithContext(ctx), base, postsOrder, []string{"Author"}, page, perPage)
	return result, errors.Wrap(err, "database.UserPosts")
}

// SearchPosts ищет посты во внешнем индексе и загружает найденные строки в порядке релевантности.
// Записи, которые есть в индексе, но уже отсутствуют в БД, пропускаются.
func (d *Database) SearchPosts(ctx context.Context, query string, page, perPage int) (Page[models.Post], error) {
	page, perPage = normalizePage(page, perPage)
	result := Page[models.Post]{Items: []models.Post{}, Page: page, PerPage: perPage}
	if d.index == nil {
		return result, nil
	}

	ids, total, err := d.index.Query(ctx, models.PostsIndex, query, page, perPage)
	if err != nil {
		return result, errors.Wrap(err, "database.SearchPosts")
	}
	result.Total = total
	if len(ids) == 0 {
		return result, nil
	}

	uuids := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if u, err := uuid.Parse(id); err == nil {
			uuids = append(uuids, u)
		}
	}

	var posts []models.Post
	if err := d.db.WithContext(ctx).Preload("Author").Where("id IN ?", uuids).Find(&posts).Error; err != nil {
		return result, errors.Wrap(err, "database.SearchPosts")
	}

	byID := make(map[uuid.UUID]models.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}
	for _, id := range uuids {
		if p, ok := byID[id]; ok {
			result.Items = append(result.Items, p)
		}
	}
	return result, nil
}

// ReindexPosts заново отправляет все посты в поисковый индекс
func (d *Database) ReindexPosts(ctx context.Context, batchSize int) (int, error) {
	if d.index == nil {
		return 0, search.ErrNotConfigured
	}
	if batchSize < 1 {
		batchSize = 100
	}

	indexed := 0
	var batch []models.Post
	err := d.db.WithContext(ctx).Model(&models.Post{}).FindInBatches(&batch, batchSize, func(tx *gorm.DB, _ int) error {
		for i := range batch {
			if err := search.AddModel(ctx, d.index, &batch[i]); err != nil {
				return err
			}
			indexed++
		}
		return nil
	}).Error
	return indexed, errors.Wrap(err, "database.ReindexPosts")
}

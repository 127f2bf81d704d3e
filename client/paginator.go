package client

import (
	"sync"
	"time"

	"github.com/yashyenugu/NeonGram/internal/model"
)

// fetchPage 拉取 lastTime 之前的一页帖子
type fetchPage func(lastTime *time.Time) ([]*model.Post, error)

// FeedPaginator 实现无限滚动的取页协议：
// 游标取上一页最后一条的时间，短页或空页视为到底；
// 同一时刻最多一个在途请求，到底后的调用直接返回空页
type FeedPaginator struct {
	fetch    fetchPage
	pageSize int

	mu       sync.Mutex
	lastTime *time.Time
	hasNext  bool
	loading  bool
}

func NewFeedPaginator(fetch fetchPage, pageSize int) *FeedPaginator {
	return &FeedPaginator{
		fetch:    fetch,
		pageSize: pageSize,
		hasNext:  true,
	}
}

// HasNext 返回是否还有下一页
func (p *FeedPaginator) HasNext() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasNext
}

// Next 拉取下一页。已到底或已有在途请求时返回 (nil, false, nil)
func (p *FeedPaginator) Next() ([]*model.Post, bool, error) {
	p.mu.Lock()
	if !p.hasNext || p.loading {
		p.mu.Unlock()
		return nil, false, nil
	}
	p.loading = true
	cursor := p.lastTime
	p.mu.Unlock()

	posts, err := p.fetch(cursor)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.loading = false

	if err != nil {
		// 失败不推进游标，下次调用重试同一页
		return nil, false, err
	}

	if len(posts) > 0 {
		t := posts[len(posts)-1].Time
		p.lastTime = &t
	}
	if len(posts) < p.pageSize {
		p.hasNext = false
	}
	return posts, true, nil
}

// Reset 回到第一页（例如下拉刷新）
func (p *FeedPaginator) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastTime = nil
	p.hasNext = true
}

// Package repository 定义数据访问层接口
package repository

import (
	"context"
)

// Pinger 存储连通性检查
type Pinger interface {
	Ping(ctx context.Context) error
}

// Store 课程存储的聚合
type Store struct {
	Courses CourseRepository
	Notes   ChapterNoteRepository
	Health  Pinger
	// Close 释放底层连接
	Close func(ctx context.Context) error
}

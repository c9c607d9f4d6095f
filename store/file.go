package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/multierr"
)

var readFile = os.ReadFile

// errCorrupt 文件存在但内容无法解析
var errCorrupt = errors.New("corrupt high score file")

// record 磁盘上的 JSON 结构
type record struct {
	HighScore int `json:"highScore"`
}

// File 以 JSON 文件保存最高分。多个房间共享同一个 File，Save 只会让值变大。
type File struct {
	mu   sync.Mutex
	path string
}

func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Path() string { return f.path }

// Load 读取最高分；文件不存在时返回 0
func (f *File) Load() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load()
}

func (f *File) load() (int, error) {
	data, err := readFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", f.path, err)
	}
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return 0, fmt.Errorf("decode %s: %w: %w", f.path, errCorrupt, err)
	}
	return r.HighScore, nil
}

// Save 写入 value；磁盘上已有更高值时保持不变
func (f *File) Save(value int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	cur, err := f.load()
	switch {
	case errors.Is(err, errCorrupt):
		// 文件损坏时直接覆盖
	case err != nil:
		return err
	case cur >= value:
		return nil
	}
	return f.write(record{HighScore: value})
}

// write 先写临时文件再 rename，避免写一半的文件
func (f *File) write(r record) (err error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".highscore-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()
	_, werr := tmp.Write(data)
	err = multierr.Combine(werr, tmp.Sync(), tmp.Close())
	if err != nil {
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("rename to %s: %w", f.path, err)
	}
	return nil
}

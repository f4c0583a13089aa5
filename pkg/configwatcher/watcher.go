package configwatcher

import (
	"context"
	"path/filepath"
	"seclink_backend/internal/config"
	"seclink_backend/pkg/logger"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Reloader 收到重新加载后的完整配置
type Reloader func(cfg *config.Config)

// Loader 默认为 config.LoadConfig，测试可替换
type Loader func(dir string) (*config.Config, error)

const debounce = time.Second

// Watch 监听配置文件变化，阻塞直到 ctx 结束。
// 监听的是所在目录，编辑器以改名方式保存时也能收到事件。
func Watch(ctx context.Context, configFile string, load Loader, reload Reloader) error {
	if load == nil {
		load = config.LoadConfig
	}

	absPath, err := filepath.Abs(configFile)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		return err
	}

	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != absPath {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				// 防抖
				fire = time.After(debounce)
			}
		case <-fire:
			fire = nil
			newCfg, err := load(filepath.Dir(absPath))
			if err != nil {
				logger.Log.Error("Failed to reload config", zap.Error(err))
				continue
			}
			logger.Log.Info("Config reloaded", zap.String("file", absPath))
			reload(newCfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Log.Error("Config watcher error", zap.Error(err))
		}
	}
}

package scan

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Zuo-Peng/framechat/internal/frame"
)

type FileInfo struct {
	frame.Keyframe
	Mtime int64
	Size  int64
}

var imageExts = map[string]bool{".webp": true, ".png": true, ".jpg": true, ".jpeg": true}

// Keyframes walks root and returns every keyframe image whose name carries a
// frame number, sorted by video id then frame index. When videoID is non-empty
// only that video's directory is listed. A missing root yields no files.
func Keyframes(root, videoID string) ([]FileInfo, error) {
	var files []FileInfo
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable dirs
		}
		if info.IsDir() {
			if strings.HasPrefix(info.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !imageExts[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		kf, err := frame.ParseKeyframePath(path)
		if err != nil {
			return nil // not a keyframe (cover images, thumbnails)
		}
		if videoID != "" && kf.VideoID != videoID {
			return nil
		}
		files = append(files, FileInfo{
			Keyframe: kf,
			Mtime:    info.ModTime().Unix(),
			Size:     info.Size(),
		})
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].VideoID != files[j].VideoID {
			return files[i].VideoID < files[j].VideoID
		}
		return files[i].Index < files[j].Index
	})
	return files, nil
}

// Videos returns the distinct video ids found under root, sorted.
func Videos(root string) ([]string, error) {
	files, err := Keyframes(root, "")
	if err != nil {
		return nil, err
	}
	var out []string
	for i, f := range files {
		if i == 0 || files[i-1].VideoID != f.VideoID {
			out = append(out, f.VideoID)
		}
	}
	return out, nil
}

package widget

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/zjrosen/mdlive/internal/log"
	"github.com/zjrosen/mdlive/internal/ui/styles"
)

// ImageProbe checks whether an image source can be loaded.
type ImageProbe interface {
	Probe(src string) error
}

// FileProbe stats local image paths relative to Root. Remote and data URLs
// are assumed loadable.
type FileProbe struct {
	Root string
}

func (p FileProbe) Probe(src string) error {
	if src == "" {
		return fmt.Errorf("empty image source")
	}
	if strings.Contains(src, "://") || strings.HasPrefix(src, "data:") {
		return nil
	}
	local := filepath.FromSlash(src)
	if !filepath.IsAbs(local) && p.Root != "" {
		local = filepath.Join(p.Root, local)
	}
	if _, err := os.Stat(local); err != nil {
		return fmt.Errorf("probing image %q: %w", src, err)
	}
	return nil
}

// Image replaces ![alt](src). An image that fails to load renders as
// nothing instead of a broken placeholder.
type Image struct {
	Src string
	Alt string

	renderers *Renderers
	once      sync.Once
	probeErr  error
}

// NewImage creates an image widget. The source is probed on first render.
func (r *Renderers) NewImage(src, alt string) *Image {
	return &Image{Src: src, Alt: alt, renderers: r}
}

func (i *Image) Kind() Kind { return KindImage }

func (i *Image) Eq(other Widget) bool {
	o, ok := other.(*Image)
	return ok && o.Src == i.Src && o.Alt == i.Alt
}

func (i *Image) String() string {
	return i.Src
}

// Hidden reports whether the image failed to load.
func (i *Image) Hidden() bool {
	i.once.Do(func() {
		i.probeErr = i.renderers.checkImage(i.Src)
		if i.probeErr != nil {
			log.Debug(log.CatWidget, "hiding image", "src", i.Src, "error", i.probeErr)
		}
	})
	return i.probeErr != nil
}

func (i *Image) View(width int) string {
	if i.Hidden() {
		return ""
	}
	label := i.Alt
	if label == "" {
		label = path.Base(i.Src)
	}
	return styles.ImageStyle.Render("▣ " + label)
}

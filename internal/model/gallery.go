package model

import (
	"slices"
	"strings"
)

// GalleryGroup holds the images uploaded on one calendar date.
type GalleryGroup struct {
	Date   string
	Images []ImageRecord
}

// Gallery is the date-keyed partition of a flat image list, ordered by date
// descending. It is a value: no method mutates the receiver.
type Gallery struct {
	groups []GalleryGroup
}

// GroupByDate partitions images by DateKey. Images keep their relative order
// inside each group.
func GroupByDate(images []ImageRecord) Gallery {
	index := make(map[string]int)
	var groups []GalleryGroup

	for _, img := range images {
		date := img.DateKey()
		i, ok := index[date]
		if !ok {
			i = len(groups)
			index[date] = i
			groups = append(groups, GalleryGroup{Date: date})
		}
		groups[i].Images = append(groups[i].Images, img)
	}

	slices.SortStableFunc(groups, func(a, b GalleryGroup) int {
		return strings.Compare(b.Date, a.Date)
	})

	return Gallery{groups: groups}
}

// Groups returns a copy of the date groups in display order.
func (g Gallery) Groups() []GalleryGroup {
	out := make([]GalleryGroup, len(g.groups))
	for i, group := range g.groups {
		out[i] = GalleryGroup{Date: group.Date, Images: slices.Clone(group.Images)}
	}
	return out
}

// Dates returns the group keys in display order.
func (g Gallery) Dates() []string {
	dates := make([]string, len(g.groups))
	for i, group := range g.groups {
		dates[i] = group.Date
	}
	return dates
}

// Len returns the total number of images.
func (g Gallery) Len() int {
	n := 0
	for _, group := range g.groups {
		n += len(group.Images)
	}
	return n
}

// Empty reports whether the gallery holds no images.
func (g Gallery) Empty() bool {
	return len(g.groups) == 0
}

// Images returns every image in display order.
func (g Gallery) Images() []ImageRecord {
	var out []ImageRecord
	for _, group := range g.groups {
		out = append(out, group.Images...)
	}
	return out
}

// Find looks an image up by id.
func (g Gallery) Find(id string) (ImageRecord, bool) {
	for _, group := range g.groups {
		for _, img := range group.Images {
			if img.ID == id {
				return img, true
			}
		}
	}
	return ImageRecord{}, false
}

// Without returns a gallery lacking the image with the given id. A date
// group left with no images is dropped. The second value reports whether the
// image was present.
func (g Gallery) Without(id string) (Gallery, bool) {
	var (
		groups  []GalleryGroup
		removed bool
	)

	for _, group := range g.groups {
		images := make([]ImageRecord, 0, len(group.Images))
		for _, img := range group.Images {
			if img.ID == id {
				removed = true
				continue
			}
			images = append(images, img)
		}
		if len(images) == 0 {
			continue
		}
		groups = append(groups, GalleryGroup{Date: group.Date, Images: images})
	}

	if !removed {
		return g, false
	}
	return Gallery{groups: groups}, true
}

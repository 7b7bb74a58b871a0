package document

import (
	"fmt"

	"github.com/wudi/pdfengine/coords"
)

// PageCount returns the number of page slots, loaded or not.
func (d *Document) PageCount() int { return len(d.Pages) }

// PageBox returns the media box of a loaded page.
func (d *Document) PageBox(page int) (coords.Box, error) {
	p, err := d.Page(page)
	if err != nil {
		return coords.Box{}, err
	}
	return p.MediaBox, nil
}

// MarkedObjects returns the page objects inside marked content tagged tag,
// in content order.
func (d *Document) MarkedObjects(page int, tag string) ([]*PageObject, error) {
	p, err := d.Page(page)
	if err != nil {
		return nil, err
	}
	var out []*PageObject
	for _, o := range p.Objects {
		if o.HasMark(tag) {
			out = append(out, o)
		}
	}
	return out, nil
}

// InsertObject appends obj to the page content.
func (d *Document) InsertObject(page int, obj *PageObject) error {
	p, err := d.Page(page)
	if err != nil {
		return err
	}
	p.Objects = append(p.Objects, obj)
	return nil
}

// RemoveObject drops obj from the page content. Objects are compared by
// identity.
func (d *Document) RemoveObject(page int, obj *PageObject) error {
	p, err := d.Page(page)
	if err != nil {
		return err
	}
	for i, o := range p.Objects {
		if o == obj {
			p.Objects = append(p.Objects[:i], p.Objects[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: page %d", ErrObjectNotFound, page)
}

// HasMarks reports whether any loaded page carries marked content tagged tag.
func (d *Document) HasMarks(tag string) bool {
	for _, p := range d.Pages {
		if p == nil {
			continue
		}
		for _, o := range p.Objects {
			if o.HasMark(tag) {
				return true
			}
		}
	}
	return false
}

package ingestion

import (
	v1 "github.com/devstats-lab/devstats/internal/api/v1"
)

// Denylist drops submissions from client builds known to misreport.
// Matching is exact on the reported OS version or model.
type Denylist struct {
	versions map[string]struct{}
	models   map[string]struct{}
}

func NewDenylist(versions, models []string) *Denylist {
	d := &Denylist{
		versions: make(map[string]struct{}, len(versions)),
		models:   make(map[string]struct{}, len(models)),
	}
	for _, v := range versions {
		d.versions[v] = struct{}{}
	}
	for _, m := range models {
		d.models[m] = struct{}{}
	}
	return d
}

// Denied reports whether evt is denylisted and which attribute matched.
func (d *Denylist) Denied(evt *v1.Event) (string, bool) {
	if d == nil {
		return "", false
	}
	if _, ok := d.versions[evt.OSVersion]; ok {
		return "version", true
	}
	if _, ok := d.models[evt.Model]; ok {
		return "model", true
	}
	return "", false
}

// Len returns the number of denylisted identifiers.
func (d *Denylist) Len() int {
	if d == nil {
		return 0
	}
	return len(d.versions) + len(d.models)
}

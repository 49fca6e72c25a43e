// Package model defines the ledger's object model: identifiers, objects,
// states, and the errors shared across the sync pipeline.
package model

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"sort"
	"strings"
	"time"
)

// ObjectType is the kind of tracked item.
type ObjectType string

const (
	TypeArea    ObjectType = "AOR"
	TypeGoal    ObjectType = "Goal"
	TypeProject ObjectType = "Project"
	TypeTask    ObjectType = "Task"
)

// Valid reports whether t is a known object type.
func (t ObjectType) Valid() bool {
	switch t {
	case TypeArea, TypeGoal, TypeProject, TypeTask:
		return true
	}
	return false
}

// Family returns the id family for this type.
func (t ObjectType) Family() Family {
	switch t {
	case TypeArea:
		return FamilyArea
	case TypeGoal:
		return FamilyGoal
	case TypeProject:
		return FamilyProject
	case TypeTask:
		return FamilyTask
	}
	return 0
}

// Location is where an object currently lives: a document (path relative to
// the workspace root) and a structural path within it. Every object has
// exactly one location at any instant.
type Location struct {
	Document string `json:"document"`
	Path     string `json:"path,omitempty"`
}

// BackRef is the annotation left behind when an object moves: it points from
// the object's prior document back to the object, so the old location never
// silently loses the trail.
type BackRef struct {
	ObjectID ID        `json:"object_id"`
	Document string    `json:"document"`
	MovedAt  time.Time `json:"moved_at"`
}

// Render produces the stable text form embedded in generated markdown.
func (b BackRef) Render() string {
	return "(↳ " + b.Document + ")"
}

var bucketTagPattern = regexp.MustCompile(`^S3-\d+$`)

// IsBucketTag reports whether tag is a schedule-bucket tag (S3-1..S3-5).
// Bucket tags round-trip between the schedule surface and the ledger;
// all other tags flow one way, markdown to ledger.
func IsBucketTag(tag string) bool {
	return bucketTagPattern.MatchString(tag)
}

// Object is the unit of tracked intent: an area of responsibility, goal,
// project, or task.
type Object struct {
	ID ID

	// CanonicalName is fixed at creation and never edited afterwards.
	// CanonicalChecksum is the SHA-256 of CanonicalName computed at creation;
	// a mismatch on a later load is corruption, not an edit.
	CanonicalName     string
	CanonicalChecksum string

	// ColloquialName is the user-facing display label and may drift freely.
	ColloquialName string

	Type     ObjectType
	ParentID ID // zero if top-level
	State    State
	Tags     []string
	Origin   Location
	Notes    string
	People   []string

	// Timestamps are optional: documents that predate their introduction
	// produce objects without them.
	CreatedAt  *time.Time
	ModifiedAt *time.Time
}

// Checksum computes the content checksum protecting an immutable field.
func Checksum(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// NewObject creates an object, fixing its canonical name and checksum.
func NewObject(id ID, typ ObjectType, canonicalName string) *Object {
	return &Object{
		ID:                id,
		Type:              typ,
		CanonicalName:     canonicalName,
		CanonicalChecksum: Checksum(canonicalName),
		ColloquialName:    canonicalName,
		State:             StateActive,
	}
}

// BucketTag returns the object's schedule-bucket tag, or "" if unscheduled.
func (o *Object) BucketTag() string {
	for _, tag := range o.Tags {
		if IsBucketTag(tag) {
			return tag
		}
	}
	return ""
}

// ManualTags returns the non-bucket tags, sorted.
func (o *Object) ManualTags() []string {
	var tags []string
	for _, tag := range o.Tags {
		if !IsBucketTag(tag) {
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return tags
}

// SetBucketTag replaces the object's bucket tag, preserving manual tags.
// An empty bucket clears the schedule assignment.
func (o *Object) SetBucketTag(bucket string) {
	tags := o.ManualTags()
	if bucket != "" {
		tags = append(tags, bucket)
	}
	o.Tags = tags
}

// HasTag reports whether the object carries the given tag (case-insensitive).
func (o *Object) HasTag(tag string) bool {
	for _, t := range o.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy. Snapshots hand out clones so readers never see
// a partially merged object.
func (o *Object) Clone() *Object {
	dup := *o
	dup.Tags = append([]string(nil), o.Tags...)
	dup.People = append([]string(nil), o.People...)
	if o.CreatedAt != nil {
		t := *o.CreatedAt
		dup.CreatedAt = &t
	}
	if o.ModifiedAt != nil {
		t := *o.ModifiedAt
		dup.ModifiedAt = &t
	}
	return &dup
}

// Package memstore is a process-local backend with the same method sets as
// the Mongo stores. It backs db_backend=memory and handler tests.
package memstore

import (
	"sort"
	"sync"
	"time"

	"github.com/dalemusser/yatube/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DB holds every collection behind one lock.
type DB struct {
	mu  sync.RWMutex
	seq int64
	now func() time.Time

	users    map[primitive.ObjectID]models.User
	groups   map[primitive.ObjectID]models.Group
	posts    map[primitive.ObjectID]postRow
	comments map[primitive.ObjectID]commentRow
	follows  map[followKey]models.Follow
	logins   []loginRow
}

// rows carry an insertion sequence so ordering stays total even when two
// records share a timestamp.
type postRow struct {
	models.Post
	seq int64
}

type commentRow struct {
	models.Comment
	seq int64
}

type loginRow struct {
	models.LoginRecord
	seq int64
}

type followKey struct {
	user, author primitive.ObjectID
}

// Option configures a DB.
type Option func(*DB)

// WithClock replaces time.Now for CreatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(db *DB) { db.now = now }
}

func New(opts ...Option) *DB {
	db := &DB{
		now:      time.Now,
		users:    make(map[primitive.ObjectID]models.User),
		groups:   make(map[primitive.ObjectID]models.Group),
		posts:    make(map[primitive.ObjectID]postRow),
		comments: make(map[primitive.ObjectID]commentRow),
		follows:  make(map[followKey]models.Follow),
	}
	for _, o := range opts {
		o(db)
	}
	return db
}

func (db *DB) Users() *Users       { return &Users{db} }
func (db *DB) Groups() *Groups     { return &Groups{db} }
func (db *DB) Posts() *Posts       { return &Posts{db} }
func (db *DB) Comments() *Comments { return &Comments{db} }
func (db *DB) Follows() *Follows   { return &Follows{db} }
func (db *DB) Logins() *Logins     { return &Logins{db} }

// nextSeq must be called with mu held for writing.
func (db *DB) nextSeq() int64 {
	db.seq++
	return db.seq
}

func (db *DB) stamp() time.Time { return db.now().UTC() }

// sortPostsNewestFirst orders by CreatedAt desc, then insertion order desc.
func sortPostsNewestFirst(rows []postRow) {
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})
}

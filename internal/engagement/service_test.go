package engagement

import (
	"context"
	"io"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/anonto42/socialgraph/backend/internal/apperror"
	"github.com/anonto42/socialgraph/backend/internal/metrics"
	"github.com/anonto42/socialgraph/backend/internal/models"
	"github.com/anonto42/socialgraph/backend/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
)

var modes = []Mode{ModeFast, ModeTransactional}

type fixture struct {
	ctx     context.Context
	store   *store.MemoryStore
	svc     *Service
	metrics *metrics.Metrics
}

func newFixture(t *testing.T, mode Mode) *fixture {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	m := metrics.New(prometheus.NewRegistry())
	st := store.NewMemoryStore()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := NewService(st, mode,
		WithClock(func() time.Time { return now }),
		WithLogger(log),
		WithMetrics(m),
	)
	return &fixture{ctx: context.Background(), store: st, svc: svc, metrics: m}
}

func (f *fixture) addUser(t *testing.T, id string) {
	t.Helper()
	u := models.NewUser(time.Unix(0, 0).UTC())
	u.Email = id + "@example.com"
	if err := f.store.Set(f.ctx, models.UsersCollection, id, u); err != nil {
		t.Fatal(err)
	}
}

func (f *fixture) addPost(t *testing.T, id, author string) {
	t.Helper()
	p := models.NewPost(models.Author{UserID: author}, "hello", time.Unix(0, 0).UTC())
	if err := f.store.Set(f.ctx, models.PostsCollection, id, p); err != nil {
		t.Fatal(err)
	}
}

func (f *fixture) user(t *testing.T, id string) *models.User {
	t.Helper()
	u, err := store.Load[models.User](f.ctx, f.store, models.UsersCollection, id)
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func (f *fixture) post(t *testing.T, id string) *models.Post {
	t.Helper()
	p, err := store.Load[models.Post](f.ctx, f.store, models.PostsCollection, id)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLikeScenario(t *testing.T) {
	for _, mode := range modes {
		t.Run(string(mode), func(t *testing.T) {
			f := newFixture(t, mode)
			f.addUser(t, "u1")
			f.addUser(t, "u2")
			f.addPost(t, "p1", "u1")

			res, err := f.svc.ReactToPost(f.ctx, "p1", "u2", Positive)
			if err != nil {
				t.Fatal(err)
			}
			want := models.Likes{LikeCount: 1, LikedBy: []string{"u2"}, DislikedBy: []string{}}
			if !reflect.DeepEqual(res.Likes, want) {
				t.Fatalf("after like: %+v", res.Likes)
			}
			if stored := f.post(t, "p1").Likes; !reflect.DeepEqual(stored, want) {
				t.Fatalf("stored after like: %+v", stored)
			}

			if _, err := f.svc.ReactToPost(f.ctx, "p1", "u2", Positive); err != nil {
				t.Fatal(err)
			}
			stored := f.post(t, "p1").Likes
			if stored.LikeCount != 0 || len(stored.LikedBy) != 0 {
				t.Fatalf("stored after second like: %+v", stored)
			}
		})
	}
}

func TestLikeThenDislikeScenario(t *testing.T) {
	for _, mode := range modes {
		t.Run(string(mode), func(t *testing.T) {
			f := newFixture(t, mode)
			f.addPost(t, "p1", "u1")

			if _, err := f.svc.ReactToPost(f.ctx, "p1", "u2", Positive); err != nil {
				t.Fatal(err)
			}
			res, err := f.svc.ReactToPost(f.ctx, "p1", "u2", Negative)
			if err != nil {
				t.Fatal(err)
			}

			want := models.Likes{LikeCount: 0, LikedBy: []string{}, DislikedBy: []string{"u2"}}
			if !reflect.DeepEqual(res.Likes, want) {
				t.Fatalf("result = %+v, want %+v", res.Likes, want)
			}
			if stored := f.post(t, "p1").Likes; !reflect.DeepEqual(stored, want) {
				t.Fatalf("stored = %+v, want %+v", stored, want)
			}
			if got := testutil.ToFloat64(f.metrics.VoteOperations.WithLabelValues("post", "dislike", "switched")); got != 1 {
				t.Fatalf("switched dislike metric = %v", got)
			}
		})
	}
}

func TestReactToMissingPost(t *testing.T) {
	for _, mode := range modes {
		t.Run(string(mode), func(t *testing.T) {
			f := newFixture(t, mode)
			if _, err := f.svc.ReactToPost(f.ctx, "missing", "u2", Positive); !apperror.Is(err, apperror.NotFound) {
				t.Fatalf("err = %v, want not found", err)
			}
			if _, err := f.svc.VoteOnComment(f.ctx, "missing", "u2", Positive); !apperror.Is(err, apperror.NotFound) {
				t.Fatalf("err = %v, want not found", err)
			}
		})
	}
}

func TestCommentVotes(t *testing.T) {
	for _, mode := range modes {
		t.Run(string(mode), func(t *testing.T) {
			f := newFixture(t, mode)
			c := models.NewComment(models.Author{UserID: "u1"}, "p1", "nice", time.Unix(0, 0).UTC())
			if err := f.store.Set(f.ctx, models.CommentsCollection, "c1", c); err != nil {
				t.Fatal(err)
			}

			if _, err := f.svc.VoteOnComment(f.ctx, "c1", "u2", Positive); err != nil {
				t.Fatal(err)
			}
			res, err := f.svc.VoteOnComment(f.ctx, "c1", "u2", Negative)
			if err != nil {
				t.Fatal(err)
			}
			if len(res.Votes.UpvotedBy) != 0 || !reflect.DeepEqual(res.Votes.DownvotedBy, []string{"u2"}) {
				t.Fatalf("votes = %+v", res.Votes)
			}

			stored, err := store.Load[models.Comment](f.ctx, f.store, models.CommentsCollection, "c1")
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(stored.Votes, res.Votes) {
				t.Fatalf("stored votes %+v, returned %+v", stored.Votes, res.Votes)
			}
		})
	}
}

func TestFollowSymmetry(t *testing.T) {
	for _, mode := range modes {
		t.Run(string(mode), func(t *testing.T) {
			f := newFixture(t, mode)
			f.addUser(t, "a")
			f.addUser(t, "b")

			res, err := f.svc.Follow(f.ctx, "a", "b")
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(res.Following, []string{"b"}) || !reflect.DeepEqual(res.Followers, []string{"a"}) {
				t.Fatalf("result %+v", res)
			}
			a, b := f.user(t, "a"), f.user(t, "b")
			if !reflect.DeepEqual(a.Following, []string{"b"}) || !reflect.DeepEqual(b.Followers, []string{"a"}) {
				t.Fatalf("stored a.following=%v b.followers=%v", a.Following, b.Followers)
			}

			if _, err := f.svc.Follow(f.ctx, "a", "b"); !apperror.Is(err, apperror.Conflict) {
				t.Fatalf("duplicate follow = %v, want conflict", err)
			}

			if _, err := f.svc.Unfollow(f.ctx, "a", "b"); err != nil {
				t.Fatal(err)
			}
			a, b = f.user(t, "a"), f.user(t, "b")
			if len(a.Following) != 0 || len(b.Followers) != 0 {
				t.Fatalf("after unfollow a.following=%v b.followers=%v", a.Following, b.Followers)
			}
			if _, err := f.svc.Unfollow(f.ctx, "a", "b"); !apperror.Is(err, apperror.Conflict) {
				t.Fatalf("second unfollow = %v, want conflict", err)
			}

			if got := testutil.ToFloat64(f.metrics.FollowOperations.WithLabelValues("follow", "ok")); got != 1 {
				t.Fatalf("follow ok metric = %v", got)
			}
		})
	}
}

func TestFollowErrors(t *testing.T) {
	for _, mode := range modes {
		t.Run(string(mode), func(t *testing.T) {
			f := newFixture(t, mode)
			f.addUser(t, "a")

			if _, err := f.svc.Follow(f.ctx, "a", "a"); !apperror.Is(err, apperror.InvalidOperation) {
				t.Fatalf("self follow = %v", err)
			}
			if _, err := f.svc.Follow(f.ctx, "ghost", "ghost"); !apperror.Is(err, apperror.InvalidOperation) {
				t.Fatalf("self follow of missing user = %v", err)
			}
			if _, err := f.svc.Follow(f.ctx, "a", "ghost"); !apperror.Is(err, apperror.NotFound) {
				t.Fatalf("follow missing target = %v", err)
			}
			if _, err := f.svc.Unfollow(f.ctx, "ghost", "a"); !apperror.Is(err, apperror.NotFound) {
				t.Fatalf("unfollow from missing user = %v", err)
			}
		})
	}
}

func TestBookmarkRoundTrip(t *testing.T) {
	for _, mode := range modes {
		t.Run(string(mode), func(t *testing.T) {
			f := newFixture(t, mode)
			f.addUser(t, "u1")
			f.addPost(t, "p1", "u2")
			f.addPost(t, "p2", "u2")

			if _, err := f.svc.AddBookmark(f.ctx, "u1", "p1"); err != nil {
				t.Fatal(err)
			}
			before, err := f.svc.Bookmarks(f.ctx, "u1")
			if err != nil {
				t.Fatal(err)
			}

			list, err := f.svc.AddBookmark(f.ctx, "u1", "p2")
			if err != nil {
				t.Fatal(err)
			}
			if len(list.Posts) != 2 || list.Posts[1].PostID != "p2" || list.Posts[1].BookmarkedBy != "u1" {
				t.Fatalf("after add: %+v", list.Posts)
			}
			if got := f.user(t, "u1").Bookmarks; !reflect.DeepEqual(got, []string{"p1", "p2"}) {
				t.Fatalf("user bookmarks = %v", got)
			}

			if _, err := f.svc.AddBookmark(f.ctx, "u1", "p2"); !apperror.Is(err, apperror.Conflict) {
				t.Fatalf("duplicate add = %v, want conflict", err)
			}

			if _, err := f.svc.RemoveBookmark(f.ctx, "u1", "p2"); err != nil {
				t.Fatal(err)
			}
			after, err := f.svc.Bookmarks(f.ctx, "u1")
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(after.Posts, before.Posts) {
				t.Fatalf("round trip changed list: before %+v after %+v", before.Posts, after.Posts)
			}
			if got := f.user(t, "u1").Bookmarks; !reflect.DeepEqual(got, []string{"p1"}) {
				t.Fatalf("user bookmarks after remove = %v", got)
			}
		})
	}
}

func TestBookmarkErrors(t *testing.T) {
	for _, mode := range modes {
		t.Run(string(mode), func(t *testing.T) {
			f := newFixture(t, mode)
			if _, err := f.svc.AddBookmark(f.ctx, "u1", "missing"); !apperror.Is(err, apperror.NotFound) {
				t.Fatalf("bookmark missing post = %v", err)
			}
			if _, err := f.svc.RemoveBookmark(f.ctx, "u1", "p1"); !apperror.Is(err, apperror.NotFound) {
				t.Fatalf("remove without document = %v", err)
			}

			list, err := f.svc.Bookmarks(f.ctx, "nobody")
			if err != nil || len(list.Posts) != 0 {
				t.Fatalf("Bookmarks(nobody) = %+v, %v", list, err)
			}
		})
	}
}

func TestAllBookmarks(t *testing.T) {
	f := newFixture(t, ModeFast)
	f.addPost(t, "p1", "x")
	for _, u := range []string{"u1", "u2"} {
		if _, err := f.svc.AddBookmark(f.ctx, u, "p1"); err != nil {
			t.Fatal(err)
		}
	}

	all, err := f.svc.AllBookmarks(f.ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || len(all["u1"]) != 1 || all["u2"][0].PostID != "p1" {
		t.Fatalf("AllBookmarks = %+v", all)
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode("transactional"); err != nil || m != ModeTransactional {
		t.Fatalf("ParseMode(transactional) = %v, %v", m, err)
	}
	if _, err := ParseMode("eventual"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

// rendezvousStore holds the first two reads of collection until both have
// arrived, or until a short timeout when the second caller is blocked behind
// the first. Without isolation both callers then decide on the same snapshot.
type rendezvousStore struct {
	store.DocumentStore
	collection string

	mu       sync.Mutex
	arrivals int
	release  chan struct{}
}

func newRendezvousStore(inner store.DocumentStore, collection string) *rendezvousStore {
	return &rendezvousStore{DocumentStore: inner, collection: collection, release: make(chan struct{})}
}

func (r *rendezvousStore) pause(collection string) {
	if collection != r.collection {
		return
	}
	r.mu.Lock()
	r.arrivals++
	if r.arrivals == 2 {
		close(r.release)
	}
	r.mu.Unlock()
	select {
	case <-r.release:
	case <-time.After(200 * time.Millisecond):
	}
}

func (r *rendezvousStore) Get(ctx context.Context, collection, id string) (store.Document, error) {
	r.pause(collection)
	return r.DocumentStore.Get(ctx, collection, id)
}

func (r *rendezvousStore) RunTransaction(ctx context.Context, fn store.TxFunc) error {
	return r.DocumentStore.RunTransaction(ctx, func(ctx context.Context, tx store.ReadWriter) error {
		return fn(ctx, rendezvousTx{ReadWriter: tx, r: r})
	})
}

type rendezvousTx struct {
	store.ReadWriter
	r *rendezvousStore
}

func (t rendezvousTx) Get(ctx context.Context, collection, id string) (store.Document, error) {
	t.r.pause(collection)
	return t.ReadWriter.Get(ctx, collection, id)
}

func TestConcurrentBookmarkAddsKeepOneEntry(t *testing.T) {
	for _, mode := range modes {
		t.Run(string(mode), func(t *testing.T) {
			f := newFixture(t, mode)
			f.addUser(t, "u1")
			f.addPost(t, "p0", "u2")
			f.addPost(t, "p1", "u2")
			if _, err := f.svc.AddBookmark(f.ctx, "u1", "p0"); err != nil {
				t.Fatal(err)
			}

			log := logrus.New()
			log.SetOutput(io.Discard)
			svc := NewService(newRendezvousStore(f.store, models.BookmarksCollection), mode, WithLogger(log))

			errs := make([]error, 2)
			var wg sync.WaitGroup
			for i := range errs {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, errs[i] = svc.AddBookmark(f.ctx, "u1", "p1")
				}(i)
			}
			wg.Wait()

			ok, conflicts := 0, 0
			for _, err := range errs {
				switch {
				case err == nil:
					ok++
				case apperror.Is(err, apperror.Conflict):
					conflicts++
				default:
					t.Fatalf("add = %v", err)
				}
			}
			if ok != 1 || conflicts != 1 {
				t.Fatalf("ok=%d conflicts=%d, want one of each", ok, conflicts)
			}

			list, err := f.svc.Bookmarks(f.ctx, "u1")
			if err != nil {
				t.Fatal(err)
			}
			entries := 0
			for _, p := range list.Posts {
				if p.PostID == "p1" {
					entries++
				}
			}
			if len(list.Posts) != 2 || entries != 1 {
				t.Fatalf("posts = %+v, want p0 and a single p1", list.Posts)
			}
			if got := f.user(t, "u1").Bookmarks; !reflect.DeepEqual(got, []string{"p0", "p1"}) {
				t.Fatalf("user bookmarks = %v", got)
			}
		})
	}
}

func TestConcurrentBookmarkRemoveKeepsAdd(t *testing.T) {
	for _, mode := range modes {
		t.Run(string(mode), func(t *testing.T) {
			f := newFixture(t, mode)
			f.addUser(t, "u1")
			f.addPost(t, "p1", "u2")
			f.addPost(t, "p2", "u2")
			if _, err := f.svc.AddBookmark(f.ctx, "u1", "p1"); err != nil {
				t.Fatal(err)
			}

			log := logrus.New()
			log.SetOutput(io.Discard)
			svc := NewService(newRendezvousStore(f.store, models.BookmarksCollection), mode, WithLogger(log))

			var wg sync.WaitGroup
			var removeErr, addErr error
			wg.Add(2)
			go func() {
				defer wg.Done()
				_, removeErr = svc.RemoveBookmark(f.ctx, "u1", "p1")
			}()
			go func() {
				defer wg.Done()
				_, addErr = svc.AddBookmark(f.ctx, "u1", "p2")
			}()
			wg.Wait()
			if removeErr != nil || addErr != nil {
				t.Fatalf("remove = %v, add = %v", removeErr, addErr)
			}

			list, err := f.svc.Bookmarks(f.ctx, "u1")
			if err != nil {
				t.Fatal(err)
			}
			if len(list.Posts) != 1 || list.Posts[0].PostID != "p2" {
				t.Fatalf("posts = %+v, want only p2", list.Posts)
			}
		})
	}
}

func TestForgetPost(t *testing.T) {
	f := newFixture(t, ModeFast)
	f.addUser(t, "u1")
	f.addUser(t, "u2")
	f.addPost(t, "p1", "u3")
	f.addPost(t, "p2", "u3")
	for _, b := range []struct{ user, post string }{{"u1", "p1"}, {"u1", "p2"}, {"u2", "p1"}, {"ghost", "p1"}} {
		if _, err := f.svc.AddBookmark(f.ctx, b.user, b.post); err != nil {
			t.Fatal(err)
		}
	}

	pruned, err := f.svc.ForgetPost(f.ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	if pruned != 3 {
		t.Fatalf("pruned = %d, want 3", pruned)
	}

	all, err := f.svc.AllBookmarks(f.ctx)
	if err != nil {
		t.Fatal(err)
	}
	for user, posts := range all {
		for _, p := range posts {
			if p.PostID == "p1" {
				t.Fatalf("%s still bookmarks p1: %+v", user, posts)
			}
		}
	}
	if len(all["u1"]) != 1 || all["u1"][0].PostID != "p2" {
		t.Fatalf("u1 bookmarks = %+v", all["u1"])
	}
	if got := f.user(t, "u1").Bookmarks; !reflect.DeepEqual(got, []string{"p2"}) {
		t.Fatalf("u1 mirror = %v", got)
	}
	if got := f.user(t, "u2").Bookmarks; len(got) != 0 {
		t.Fatalf("u2 mirror = %v", got)
	}

	if pruned, err := f.svc.ForgetPost(f.ctx, "p1"); err != nil || pruned != 0 {
		t.Fatalf("second ForgetPost = %d, %v", pruned, err)
	}
	if got := testutil.ToFloat64(f.metrics.BookmarkOperations.WithLabelValues("forget", "ok")); got != 3 {
		t.Fatalf("forget ok metric = %v", got)
	}
}

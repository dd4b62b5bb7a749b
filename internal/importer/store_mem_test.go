package importer

import (
	"context"
	"fmt"
)

// memStore is an in-memory stand-in for the Postgres store with the same
// transactional contract: session writes are invisible to the store until
// Commit, but visible to the session's own lookups (like rows inserted
// earlier in an open transaction).
type memStore struct {
	nextID   int64
	products map[ProductKey]int64
	patents  map[PatentKey]*storedPatent
	usecodes map[string]*storedUseCode

	beginErr     error
	commitErr    error
	failPatentNo string // writes for this patent number fail, like a constraint violation
}

type storedPatent struct {
	id  int64
	rec Patent
}

type storedUseCode struct {
	id  int64
	rec UseCodeDefinition
}

func newMemStore() *memStore {
	return &memStore{
		products: make(map[ProductKey]int64),
		patents:  make(map[PatentKey]*storedPatent),
		usecodes: make(map[string]*storedUseCode),
	}
}

func (st *memStore) seedProduct(key ProductKey) int64 {
	st.nextID++
	st.products[key] = st.nextID
	return st.nextID
}

func (st *memStore) Begin(ctx context.Context) (Session, error) {
	if st.beginErr != nil {
		return nil, st.beginErr
	}

	sess := &memSession{
		store:    st,
		patents:  make(map[PatentKey]*storedPatent, len(st.patents)),
		usecodes: make(map[string]*storedUseCode, len(st.usecodes)),
	}
	for k, v := range st.patents {
		cp := *v
		sess.patents[k] = &cp
	}
	for k, v := range st.usecodes {
		cp := *v
		sess.usecodes[k] = &cp
	}
	return sess, nil
}

// memSession is one run's working copy of the store.
type memSession struct {
	store    *memStore
	patents  map[PatentKey]*storedPatent
	usecodes map[string]*storedUseCode
}

func (s *memSession) FindProductID(ctx context.Context, key ProductKey) (int64, bool, error) {
	id, ok := s.store.products[key]
	return id, ok, nil
}

func (s *memSession) FindPatentID(ctx context.Context, key PatentKey) (int64, bool, error) {
	p, ok := s.patents[key]
	if !ok {
		return 0, false, nil
	}
	return p.id, true, nil
}

func (s *memSession) InsertPatent(ctx context.Context, p *Patent) error {
	if p.PatentNo == s.store.failPatentNo {
		return fmt.Errorf("insert rejected for patent %s", p.PatentNo)
	}
	s.store.nextID++
	s.patents[p.Key()] = &storedPatent{id: s.store.nextID, rec: *p}
	return nil
}

func (s *memSession) UpdatePatent(ctx context.Context, id int64, p *Patent) error {
	if p.PatentNo == s.store.failPatentNo {
		return fmt.Errorf("update rejected for patent %s", p.PatentNo)
	}
	for _, stored := range s.patents {
		if stored.id == id {
			key := stored.rec.Key()
			stored.rec = *p
			// Natural key fields never change on update.
			stored.rec.ApplType = key.ApplType
			stored.rec.ApplNo = key.ApplNo
			stored.rec.ProductNo = key.ProductNo
			stored.rec.PatentNo = key.PatentNo
			return nil
		}
	}
	return fmt.Errorf("no patent with id %d", id)
}

func (s *memSession) FindUseCodeID(ctx context.Context, code string) (int64, bool, error) {
	u, ok := s.usecodes[code]
	if !ok {
		return 0, false, nil
	}
	return u.id, true, nil
}

func (s *memSession) InsertUseCode(ctx context.Context, u *UseCodeDefinition) error {
	s.store.nextID++
	s.usecodes[u.Code] = &storedUseCode{id: s.store.nextID, rec: *u}
	return nil
}

func (s *memSession) UpdateUseCode(ctx context.Context, id int64, u *UseCodeDefinition) error {
	for _, stored := range s.usecodes {
		if stored.id == id {
			code := stored.rec.Code
			stored.rec = *u
			stored.rec.Code = code
			return nil
		}
	}
	return fmt.Errorf("no use code with id %d", id)
}

func (s *memSession) Commit(ctx context.Context) error {
	if s.store.commitErr != nil {
		return s.store.commitErr
	}
	s.store.patents = s.patents
	s.store.usecodes = s.usecodes
	return nil
}

func (s *memSession) Rollback(ctx context.Context) error {
	return nil
}

package repo

import (
	"fmt"

	"github.com/systemshift/gitlet/internal/dag"
	"github.com/systemshift/gitlet/internal/logging"
)

// Add stages the current working copy of name. A file identical to the
// version HEAD tracks is unstaged instead, including a pending removal.
func (r *Repository) Add(name string) error {
	p, err := r.cleanPath(name)
	if err != nil {
		return err
	}
	if !r.work.Exists(p) {
		return fmt.Errorf("%w: %s", ErrFileNotFound, p)
	}
	data, err := r.work.Read(p)
	if err != nil {
		return err
	}
	head, err := r.HeadCommit()
	if err != nil {
		return err
	}
	id, err := r.db.Blobs.Digest(data)
	if err != nil {
		return err
	}

	log := r.log.WithFields(logging.Fields{logging.PathFieldKey: p, "blob": id})
	if tracked, ok := head.Snapshot.Get(p); ok && tracked == id {
		r.stage.Restore(p)
		log.Debug("matches HEAD, unstaged")
		return r.saveStage()
	}
	if _, err := r.db.Blobs.Put(data); err != nil {
		return err
	}
	r.stage.Add(p, id)
	log.Debug("staged")
	return r.saveStage()
}

// Remove unstages name and, when HEAD tracks it, stages its removal and
// deletes the working copy.
func (r *Repository) Remove(name string) error {
	p, err := r.cleanPath(name)
	if err != nil {
		return err
	}
	head, err := r.HeadCommit()
	if err != nil {
		return err
	}
	_, staged := r.stage.StagedID(p)
	tracked := head.Snapshot.Has(p)
	if !staged && !tracked {
		return fmt.Errorf("%w: %s", ErrNothingToRemove, p)
	}

	if staged {
		r.stage.Unstage(p)
	}
	if tracked {
		r.stage.Remove(p)
	}
	if err := r.saveStage(); err != nil {
		return err
	}
	if tracked {
		if err := r.work.Remove(p); err != nil {
			return err
		}
	}
	r.log.WithField(logging.PathFieldKey, p).Debug("removed")
	return nil
}

// HashObject digests a working file as a blob without storing it. It returns
// the blob ID and its base32 CID.
func (r *Repository) HashObject(name string) (dag.ID, string, error) {
	p, err := r.cleanPath(name)
	if err != nil {
		return "", "", err
	}
	if !r.work.Exists(p) {
		return "", "", fmt.Errorf("%w: %s", ErrFileNotFound, p)
	}
	data, err := r.work.Read(p)
	if err != nil {
		return "", "", err
	}
	c, err := dag.ComputeCID(dag.CodecBlob, data)
	if err != nil {
		return "", "", err
	}
	id, err := dag.IDFromCID(c)
	if err != nil {
		return "", "", err
	}
	return id, dag.FormatCID(c), nil
}

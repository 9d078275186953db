package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/sha3"

	keccak "github.com/Giulio2002/keccak_preimage"
	"github.com/Giulio2002/keccak_preimage/preimage"
)

type fileHasher struct {
	reg    *preimage.Registry
	chunk  int
	verify bool
	stdin  io.Reader
}

// hash streams the named file ("-" for stdin) into a fresh session.
func (h *fileHasher) hash(ctx context.Context, name string) ([keccak.Size]byte, error) {
	var in io.Reader = h.stdin
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return [keccak.Size]byte{}, err
		}
		defer f.Close()
		in = f
	}

	id, err := h.reg.Init()
	if err != nil {
		return [keccak.Size]byte{}, err
	}
	digest, err := h.absorb(ctx, id, in)
	if err != nil {
		// Only an open session needs releasing; a failed Final has already retired it.
		_ = h.reg.Discard(id)
		return [keccak.Size]byte{}, err
	}
	return digest, nil
}

func (h *fileHasher) absorb(ctx context.Context, id preimage.SessionID, in io.Reader) ([keccak.Size]byte, error) {
	ref := sha3.NewLegacyKeccak256()
	buf := make([]byte, h.chunk)
	for {
		if err := ctx.Err(); err != nil {
			return [keccak.Size]byte{}, err
		}
		n, err := io.ReadFull(in, buf)
		if n > 0 {
			if uerr := h.reg.Update(id, buf[:n]); uerr != nil {
				return [keccak.Size]byte{}, uerr
			}
			if h.verify {
				ref.Write(buf[:n])
			}
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			break
		}
		if err != nil {
			return [keccak.Size]byte{}, err
		}
	}

	digest, err := h.reg.Final(id)
	if err != nil {
		return [keccak.Size]byte{}, err
	}
	if h.verify {
		if want := ref.Sum(nil); !bytes.Equal(digest[:], want) {
			return [keccak.Size]byte{}, fmt.Errorf("digest mismatch: session %x, reference %x", digest, want)
		}
	}
	return digest, nil
}

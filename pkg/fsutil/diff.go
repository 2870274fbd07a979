package fsutil

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"io"
	"reflect"
	"time"

	ociv1 "github.com/google/go-containerregistry/pkg/v1"
)

type member struct {
	header  tar.Header
	content []byte
}

func readMembers(archive ociv1.Layer) (_ []member, err error) {
	reader, err := archive.Uncompressed()
	if err != nil {
		return nil, err
	}
	defer func() {
		if _err := reader.Close(); _err != nil && err == nil {
			err = _err
		}
	}()

	var ret []member
	tarReader := tar.NewReader(reader)
	for {
		header, err := tarReader.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return ret, nil
			}
			return nil, err
		}
		content, err := io.ReadAll(tarReader)
		if err != nil {
			return nil, err
		}
		hdr := *header
		hdr.ModTime = time.Time{}
		hdr.AccessTime = time.Time{}
		hdr.ChangeTime = time.Time{}
		ret = append(ret, member{header: hdr, content: content})
	}
}

// DiffArchives describes the first difference between two archives other than member timestamps,
// comparing members in order.  It returns "" if the archives are equivalent.
func DiffArchives(a, b ociv1.Layer) (string, error) {
	aMembers, err := readMembers(a)
	if err != nil {
		return "", err
	}
	bMembers, err := readMembers(b)
	if err != nil {
		return "", err
	}
	for i := 0; i < len(aMembers) && i < len(bMembers); i++ {
		aHdr, bHdr := aMembers[i].header, bMembers[i].header
		if aHdr.Name != bHdr.Name {
			return fmt.Sprintf("member %d: %q != %q", i, aHdr.Name, bHdr.Name), nil
		}
		if !reflect.DeepEqual(aHdr, bHdr) {
			return fmt.Sprintf("member %q: headers differ", aHdr.Name), nil
		}
		if !bytes.Equal(aMembers[i].content, bMembers[i].content) {
			return fmt.Sprintf("member %q: content differs", aHdr.Name), nil
		}
	}
	if len(aMembers) != len(bMembers) {
		return fmt.Sprintf("%d members != %d members", len(aMembers), len(bMembers)), nil
	}
	return "", nil
}

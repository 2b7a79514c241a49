//go:build linux

package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/frayfs/fray/internal/fray"
)

func TestHelloFS_Lookup(t *testing.T) {
	fs := newHelloFS(nil)

	resp, err := fs.Lookup(context.Background(), &fray.RequestHeader{Node: helloRootNode}, &fray.LookupRequest{Name: helloName})
	require.NoError(t, err)
	require.Equal(t, helloFileNode, resp.Entry.Node)
	require.Equal(t, uint64(len(helloContents)), resp.Entry.Attrib.Size)

	_, err = fs.Lookup(context.Background(), &fray.RequestHeader{Node: helloRootNode}, &fray.LookupRequest{Name: "missing"})
	require.ErrorIs(t, err, fray.ErrorNotExist)

	_, err = fs.Lookup(context.Background(), &fray.RequestHeader{Node: helloFileNode}, &fray.LookupRequest{Name: helloName})
	require.ErrorIs(t, err, fray.ErrorNotExist)
}

func TestHelloFS_Open(t *testing.T) {
	fs := newHelloFS(nil)

	_, err := fs.Open(context.Background(), &fray.RequestHeader{Node: helloFileNode}, &fray.OpenRequest{Flags: fray.OpenReadOnly})
	require.NoError(t, err)

	// The file is read-only.
	_, err = fs.Open(context.Background(), &fray.RequestHeader{Node: helloFileNode}, &fray.OpenRequest{Flags: fray.OpenReadWrite})
	require.ErrorIs(t, err, fray.ErrorUnauthorized)
}

func TestHelloFS_Read(t *testing.T) {
	fs := newHelloFS(nil)
	hdr := &fray.RequestHeader{Node: helloFileNode}

	resp, err := fs.Read(context.Background(), hdr, &fray.ReadRequest{Size: 4096})
	require.NoError(t, err)
	require.Equal(t, helloContents, resp.Data)

	resp, err = fs.Read(context.Background(), hdr, &fray.ReadRequest{Offset: 6, Size: 4})
	require.NoError(t, err)
	require.Equal(t, helloContents[6:10], resp.Data)

	resp, err = fs.Read(context.Background(), hdr, &fray.ReadRequest{Offset: uint64(len(helloContents) + 1), Size: 4096})
	require.NoError(t, err)
	require.Empty(t, resp.Data)
}

func TestHelloFS_Readdir(t *testing.T) {
	fs := newHelloFS(nil)
	hdr := &fray.RequestHeader{Node: helloRootNode}

	resp, err := fs.Readdir(context.Background(), hdr, &fray.ReadRequest{Size: 4096})
	require.NoError(t, err)
	require.Len(t, resp.Entries, 3)
	require.Equal(t, helloName, resp.Entries[2].Name)

	// A resumed listing is already complete.
	resp, err = fs.Readdir(context.Background(), hdr, &fray.ReadRequest{Offset: 64, Size: 4096})
	require.NoError(t, err)
	require.Empty(t, resp.Entries)
}

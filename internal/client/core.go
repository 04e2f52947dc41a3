package client

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"google.golang.org/grpc/metadata"

	"github.com/ocx/syncx/internal/archive"
	"github.com/ocx/syncx/internal/merkle"
	"github.com/ocx/syncx/pb"
)

func packInto(w io.Writer, paths []string) error {
	if err := archive.Pack(w, paths); err != nil {
		return fmt.Errorf("client: pack archive: %w", err)
	}
	return nil
}

// chunkSize bounds each UploadFiles message, matching the streaming
// contract described for the archive codec (§4.2): fixed-size buffer, not
// whole-file buffering.
const chunkSize = 8 * 1024

// Client drives the three RPCs against a connected server.
type Client struct {
	rpc pb.SyncxClient
}

func New(rpc pb.SyncxClient) *Client {
	return &Client{rpc: rpc}
}

// CreateAccount registers a new account and persists the resulting
// commitment locally.
func (c *Client) CreateAccount(ctx context.Context, password string) (*Commitment, error) {
	resp, err := c.rpc.RegisterClient(ctx, &pb.RegisterClientRequest{Password: password})
	if err != nil {
		return nil, fmt.Errorf("client: register: %w", err)
	}
	commitment := &Commitment{ID: resp.ID, BearerToken: resp.BearerToken}
	if err := SaveCommitment(commitment); err != nil {
		return nil, err
	}
	return commitment, nil
}

// listImmediateFiles returns the regular files directly inside dir,
// deliberately not recursing into subdirectories (§9 recursion-in-
// client-packing resolution: preserve the source's non-recursive scope).
func listImmediateFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("client: read dir %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	return paths, nil
}

// Upload packs every immediate file in dir, computes the local Merkle
// tree, streams the archive to the server, and on success persists the
// new root in the local commitment (§4.9).
func (c *Client) Upload(ctx context.Context, dir string) (string, error) {
	commitment, err := LoadCommitment()
	if err != nil {
		return "", err
	}

	paths, err := listImmediateFiles(dir)
	if err != nil {
		return "", err
	}
	if len(paths) == 0 {
		return "", fmt.Errorf("client: no files to upload in %s", dir)
	}

	leaves := make([][]byte, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return "", fmt.Errorf("client: read %s: %w", p, err)
		}
		leaves = append(leaves, data)
	}
	tree, err := merkle.New(leaves)
	if err != nil {
		return "", fmt.Errorf("client: build local tree: %w", err)
	}

	var archiveBuf bytes.Buffer
	if err := packInto(&archiveBuf, paths); err != nil {
		return "", err
	}
	checksum := sha256.Sum256(archiveBuf.Bytes())

	ctx = metadata.AppendToOutgoingContext(ctx, "checksum", hex.EncodeToString(checksum[:]))
	stream, err := c.rpc.UploadFiles(ctx)
	if err != nil {
		return "", fmt.Errorf("client: open upload stream: %w", err)
	}

	content := archiveBuf.Bytes()
	first := true
	for len(content) > 0 || first {
		n := chunkSize
		if n > len(content) {
			n = len(content)
		}
		chunk := &pb.UploadChunk{Content: content[:n]}
		if first {
			chunk.BearerToken = commitment.BearerToken
			first = false
		}
		if err := stream.Send(chunk); err != nil {
			return "", fmt.Errorf("client: send chunk: %w", err)
		}
		content = content[n:]
	}

	if _, err := stream.CloseAndRecv(); err != nil {
		return "", fmt.Errorf("client: upload failed: %w", err)
	}

	commitment.MerkleRoot = tree.Root()
	if err := SaveCommitment(commitment); err != nil {
		return "", err
	}
	return commitment.MerkleRoot, nil
}

// DownloadResult reports whether the downloaded bytes verify against the
// stored commitment, and the proof's recomputed root for diagnostics.
type DownloadResult struct {
	Valid          bool
	RecomputedRoot string
}

// Download fetches fileName, recomputes its hash, verifies the server's
// inclusion proof against the stored commitment root, and writes the
// bytes into outDir (§4.9).
func (c *Client) Download(ctx context.Context, fileName, outDir string) (*DownloadResult, error) {
	commitment, err := LoadCommitment()
	if err != nil {
		return nil, err
	}

	stream, err := c.rpc.DownloadFile(ctx, &pb.DownloadRequest{BearerToken: commitment.BearerToken, FileName: fileName})
	if err != nil {
		return nil, fmt.Errorf("client: open download stream: %w", err)
	}

	var content bytes.Buffer
	var proof *pb.MerkleProof
	for {
		chunk, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("client: receive chunk: %w", err)
		}
		content.Write(chunk.Content)
		if chunk.MerkleProof != nil {
			proof = chunk.MerkleProof
		}
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("client: create output dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(outDir, fileName), content.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("client: write %s: %w", fileName, err)
	}

	sum := sha256.Sum256(content.Bytes())
	leafHash := hex.EncodeToString(sum[:])

	fromWire := make([]merkle.ProofNode, 0)
	if proof != nil {
		for _, n := range proof.Nodes {
			fromWire = append(fromWire, merkle.ProofNode{Sibling: n.Hash, Side: merkle.Side(n.Flag)})
		}
	}

	valid, recomputed := merkle.Verify(leafHash, fromWire, commitment.MerkleRoot)
	return &DownloadResult{Valid: valid, RecomputedRoot: recomputed}, nil
}

// MerkleRoot returns the root currently stored in the local commitment.
func MerkleRoot() (string, error) {
	c, err := LoadCommitment()
	if err != nil {
		return "", err
	}
	return c.MerkleRoot, nil
}

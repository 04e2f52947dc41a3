package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/ocx/syncx/internal/client"
	"github.com/ocx/syncx/pb"
)

const version = "1.0.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	serverAddr := os.Getenv("SYNCX_SERVER_ADDR")
	if serverAddr == "" {
		serverAddr = "localhost:8443"
	}

	switch os.Args[1] {
	case "create_account":
		cmdCreateAccount(serverAddr)
	case "upload":
		cmdUpload(serverAddr)
	case "download":
		cmdDownload(serverAddr)
	case "merkleroot":
		cmdMerkleRoot()
	case "version":
		fmt.Printf("syncx-cli v%s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`syncx-cli v` + version + `

Usage: syncx <command> [flags]

Commands:
  create_account -p <password>          Register a new account
  upload -d <directory>                 Pack and upload every file in directory
  download -f <file> -d <outdir>        Download file and verify its inclusion proof
  merkleroot                            Print the locally stored commitment root
  version                                Print version
  help                                   Show this help

Environment:
  SYNCX_SERVER_ADDR   gRPC server address (default: localhost:8443)`)
}

func dial(addr string) (*grpc.ClientConn, error) {
	return grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
}

func newClient(addr string) (*client.Client, *grpc.ClientConn, error) {
	conn, err := dial(addr)
	if err != nil {
		return nil, nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return client.New(pb.NewSyncxClient(conn)), conn, nil
}

func cmdCreateAccount(addr string) {
	var password string
	args := os.Args[2:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--password", "-p":
			i++
			if i < len(args) {
				password = args[i]
			}
		}
	}
	if password == "" {
		fmt.Fprintln(os.Stderr, "error: -p/--password is required")
		os.Exit(1)
	}

	c, conn, err := newClient(addr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	commitment, err := c.CreateAccount(ctx, password)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	fmt.Printf("account created: id=%s\n", commitment.ID)
}

func cmdUpload(addr string) {
	var dir string
	args := os.Args[2:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--dir", "-d":
			i++
			if i < len(args) {
				dir = args[i]
			}
		}
	}
	if dir == "" {
		fmt.Fprintln(os.Stderr, "error: -d/--dir is required")
		os.Exit(1)
	}

	c, conn, err := newClient(addr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	root, err := c.Upload(ctx, dir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	fmt.Printf("upload complete: merkle_root=%s\n", root)
}

func cmdDownload(addr string) {
	var file, outDir string
	args := os.Args[2:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--file", "-f":
			i++
			if i < len(args) {
				file = args[i]
			}
		case "--dir", "-d":
			i++
			if i < len(args) {
				outDir = args[i]
			}
		}
	}
	if file == "" {
		fmt.Fprintln(os.Stderr, "error: -f/--file is required")
		os.Exit(1)
	}
	if outDir == "" {
		outDir = "."
	}

	c, conn, err := newClient(addr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	result, err := c.Download(ctx, file, outDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	if !result.Valid {
		fmt.Fprintf(os.Stderr, "WARNING: inclusion proof did not verify (recomputed root %s)\n", result.RecomputedRoot)
		os.Exit(1)
	}
	fmt.Printf("downloaded %s, proof verified\n", file)
}

func cmdMerkleRoot() {
	root, err := client.MerkleRoot()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	fmt.Println(root)
}

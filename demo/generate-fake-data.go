package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/igusev/sitefind/internal/model"
)

func minutes(n int) *int { return &n }

func main() {
	demoDir := "demo/data"
	if err := os.MkdirAll(demoDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create demo dir: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generating fake data in: %s\n", demoDir)

	docs := []model.Document{
		// Projects
		{
			ID:          "react-dashboard",
			Title:       "React Dashboard",
			Description: "Analytics dashboard with live charts",
			Content:     "A modern **dashboard** built with React and TypeScript. Charts stream over WebSockets and the layout is fully responsive.",
			Tags:        []string{"react", "typescript", "dashboard"},
			Categories:  []string{"frontend"},
			Section:     "project",
			URL:         "/projects/react-dashboard/",
			Date:        "2024-01-15",
			Image:       "/images/react-dashboard.png",
		},
		{
			ID:          "vue-blog",
			Title:       "Vue Blog Engine",
			Description: "Static blog platform",
			Content:     "A blog platform using Vue.js with Markdown posts, RSS feeds and a dark theme.",
			Tags:        []string{"vue", "markdown"},
			Categories:  []string{"frontend"},
			Section:     "project",
			URL:         "/projects/vue-blog/",
			Date:        "2024-02-03",
		},
		{
			ID:          "k8s-operator",
			Title:       "Kubernetes Backup Operator",
			Description: "Scheduled volume snapshots for clusters",
			Content:     "An operator written in Go that snapshots persistent volumes on a schedule and prunes old backups.",
			Tags:        []string{"go", "kubernetes", "devops"},
			Categories:  []string{"infrastructure"},
			Section:     "project",
			URL:         "/projects/k8s-operator/",
			Date:        "2024-04-22",
		},
		{
			ID:          "ml-pipeline",
			Title:       "Image Classification Pipeline",
			Description: "Training and serving vision models",
			Content:     "End-to-end pipeline in Python: data labelling, training with PyTorch, and a small inference API.",
			Tags:        []string{"python", "ai", "pytorch"},
			Categories:  []string{"machine-learning"},
			Section:     "project",
			URL:         "/projects/ml-pipeline/",
			Date:        "2023-11-08",
		},
		{
			ID:          "cli-notes",
			Title:       "Terminal Notes",
			Description: "Fuzzy note taking from the shell",
			Content:     "A tiny command line tool that stores notes as Markdown files and finds them with fuzzy search.",
			Tags:        []string{"go", "cli"},
			Categories:  []string{"tools"},
			Section:     "project",
			URL:         "/projects/cli-notes/",
			Date:        "2024-06-30",
		},

		// Blog posts
		{
			ID:          "react-hooks",
			Title:       "React Hooks in Depth",
			Description: "useEffect, useMemo and custom hooks",
			Content:     "## Why hooks\n\nHooks let function components hold state. This post walks through `useEffect` cleanup, memoization and writing custom hooks.",
			Tags:        []string{"react", "javascript"},
			Categories:  []string{"frontend"},
			Section:     "blog",
			URL:         "/blog/react-hooks/",
			Date:        "2024-03-12",
			ReadingTime: minutes(9),
		},
		{
			ID:          "go-concurrency",
			Title:       "Go Concurrency Patterns",
			Description: "Pipelines, fan-out and cancellation",
			Content:     "Channels and goroutines compose into pipelines. We cover fan-out, fan-in, and cancellation with context.Context.",
			Tags:        []string{"go", "concurrency"},
			Categories:  []string{"backend"},
			Section:     "blog",
			URL:         "/blog/go-concurrency/",
			Date:        "2024-05-18",
			ReadingTime: minutes(12),
		},
		{
			ID:          "ai-for-devs",
			Title:       "Practical AI for Developers",
			Description: "Embedding models in everyday apps",
			Content:     "How to add semantic search and summarization to an existing application without training anything yourself.",
			Tags:        []string{"ai", "python"},
			Categories:  []string{"machine-learning"},
			Section:     "blog",
			URL:         "/blog/ai-for-devs/",
			Date:        "2024-07-02",
			ReadingTime: minutes(7),
		},
		{
			ID:          "typescript-tips",
			Title:       "TypeScript Tips for Large Codebases",
			Description: "Strictness, generics and project references",
			Content:     "Lessons from migrating a large React codebase to strict TypeScript, including project references and generic helpers.",
			Tags:        []string{"typescript", "react"},
			Categories:  []string{"frontend"},
			Section:     "blog",
			URL:         "/blog/typescript-tips/",
			Date:        "2023-12-24",
			ReadingTime: minutes(10),
		},
		{
			ID:          "kubernetes-basics",
			Title:       "Kubernetes for Web Developers",
			Description: "Pods, services and ingress explained",
			Content:     "A gentle introduction to deploying a web application on Kubernetes with a Deployment, a Service and an Ingress.",
			Tags:        []string{"kubernetes", "devops"},
			Categories:  []string{"infrastructure"},
			Section:     "blog",
			URL:         "/blog/kubernetes-basics/",
			Date:        "2024-02-27",
			ReadingTime: minutes(15),
		},

		// Pages
		{
			ID:          "about",
			Title:       "About",
			Description: "Who I am and what I work on",
			Content:     "Full-stack developer writing about React, Go and the occasional machine learning experiment.",
			Section:     "page",
			URL:         "/about/",
		},
		{
			ID:          "uses",
			Title:       "Uses",
			Description: "Hardware and software I use daily",
			Content:     "Editor, terminal, keyboard and the command line tools that make up my daily setup.",
			Tags:        []string{"tools"},
			Section:     "page",
			URL:         "/uses/",
		},
	}

	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to marshal documents: %v\n", err)
		os.Exit(1)
	}

	indexFile := filepath.Join(demoDir, "search-index.json")
	if err := os.WriteFile(indexFile, data, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write index: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✓ Created search index (%d documents)\n", len(docs))

	// Compressed copy, to try the .zst source
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create zstd encoder: %v\n", err)
		os.Exit(1)
	}
	defer enc.Close()

	zstFile := indexFile + ".zst"
	if err := os.WriteFile(zstFile, enc.EncodeAll(data, nil), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write compressed index: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✓ Created compressed index\n")

	fmt.Printf("\nTry it:\n  sitefind -i %s\n  sitefind -i %s react\n", indexFile, zstFile)
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	mcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	endpoint := flag.String("endpoint", "http://localhost:8080/mcp/stream", "MCP streamable HTTP endpoint")
	runPipeline := flag.Bool("run", false, "also trigger a small urls-only run")
	flag.Parse()

	ctx := context.Background()

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "tenuretrack-test-client",
		Version: "0.1.0",
	}, nil)

	session, err := client.Connect(ctx, &mcp.StreamableClientTransport{
		Endpoint: *endpoint,
	}, nil)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer func() { _ = session.Close() }()

	log.Printf("Connected to server (session ID: %s)\n", session.ID())

	testListTools(ctx, session)
	if *runPipeline {
		testRunPipeline(ctx, session)
	}
	testListingSets(ctx, session)
	testJobRecords(ctx, session)

	fmt.Println("\nAll tests completed")
}

func testListTools(ctx context.Context, session *mcp.ClientSession) {
	fmt.Println("\nTEST: list tools")

	resp, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	if err != nil {
		log.Printf("list tools failed: %v", err)
		return
	}
	for _, tool := range resp.Tools {
		fmt.Printf("  %s: %s\n", tool.Name, tool.Description)
	}
}

func testRunPipeline(ctx context.Context, session *mcp.ClientSession) {
	fmt.Println("\nTEST: run_pipeline")

	params := &mcp.CallToolParams{
		Name: "run_pipeline",
		Arguments: map[string]any{
			"mode":      "urls",
			"max_pages": 1,
		},
	}

	result, err := session.CallTool(ctx, params)
	if err != nil {
		log.Printf("run_pipeline failed: %v", err)
		return
	}

	printResult(result)
	fmt.Println("run_pipeline passed")
}

func testListingSets(ctx context.Context, session *mcp.ClientSession) {
	fmt.Println("\nTEST: listing_sets")

	for _, kind := range []string{"", "new"} {
		result, err := session.CallTool(ctx, &mcp.CallToolParams{
			Name:      "listing_sets",
			Arguments: map[string]any{"kind": kind},
		})
		if err != nil {
			log.Printf("listing_sets (kind=%q) failed: %v", kind, err)
			return
		}
		printResult(result)
	}
	fmt.Println("listing_sets passed")
}

func testJobRecords(ctx context.Context, session *mcp.ClientSession) {
	fmt.Println("\nTEST: job_records")

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "job_records",
		Arguments: map[string]any{"active_only": true},
	})
	if err != nil {
		log.Printf("job_records failed: %v", err)
		return
	}

	printResult(result)
	fmt.Println("job_records passed")
}

func printResult(res *mcp.CallToolResult) {
	if res.IsError {
		fmt.Println("  (tool reported an error)")
	}
	for _, c := range res.Content {
		if txt, ok := c.(*mcp.TextContent); ok {
			fmt.Println(txt.Text)
		}
	}
}

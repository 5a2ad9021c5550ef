// Package oriole provides an embedded Go client for the oriole agentic
// retrieval engine: the full plan → search → fuse → resolve → rerank
// pipeline running in-process against a Redis search backend, without the
// HTTP layer.
//
//	client, _ := oriole.New(ctx,
//	    oriole.WithRedis("localhost:6379", ""),
//	    oriole.WithOpenAI(os.Getenv("OPENAI_API_KEY")),
//	    oriole.WithEmbedding("text-embedding-3-small", 1536),
//	)
//	defer client.Close()
//
//	docs, _ := client.Ask(ctx, "compare insulin resistance and thyroid disorders", 5)
//	for _, d := range docs {
//	    fmt.Println(d.DocID, d.Score)
//	}
package oriole

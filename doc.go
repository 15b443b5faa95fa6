// Package orda provides a Go client for the orda trip retrieval service:
// concurrent category fan-out over a vector search backend, with per-category
// retry and optional LLM itinerary generation.
//
// Every query is resolved per category (lodging, attraction, food, event)
// independently. A category that keeps timing out is retried with growing
// patience; one that fails outright is settled immediately. The result always
// covers exactly the requested categories: failures are reported per
// category, never by dropping one.
//
// # Fan-out search
//
//	client, _ := orda.New(orda.WithBackend("http://localhost:8000/api/v1/search"))
//	defer client.Close()
//
//	res, _ := client.Search("아이랑 갈만한 제주 여행지").
//	    Categories(orda.Attraction, orda.Food).
//	    TopK(10).
//	    Do(ctx)
//	for _, out := range res.Outcomes {
//	    fmt.Println(out.Category, len(out.Places), out.Failed)
//	}
//
// # Itinerary generation
//
//	client, _ := orda.New(
//	    orda.WithBackend("http://localhost:8000/api/v1/search"),
//	    orda.WithRedisCache("localhost:6379", ""),
//	    orda.WithAnswerProvider(orda.AnswerProvider{APIKey: os.Getenv("UPSTAGE_API_KEY")}),
//	)
//
//	ans, _ := client.Chat(ctx, "가족이랑 3박4일 제주 여행 계획 짜줘", "3박4일")
//	fmt.Println(ans.Text)
package orda

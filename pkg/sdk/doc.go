// Package convsearch embeds the conversational search pipeline in a Go program
// without running the HTTP gateway.
//
// Each call retrieves the conversation history, rewrites the message into a
// search intent when earlier turns exist, stores the new turn and runs a
// hybrid semantic/vector query against Azure AI Search.
//
//	client, _ := convsearch.New(ctx,
//	    convsearch.WithSQLite("chat.db"),
//	    convsearch.WithAzureSearch("https://svc.search.windows.net/indexes/", "2024-07-01", key),
//	    convsearch.WithCompleter(myCompleter),
//	)
//	defer client.Close()
//
//	docs, _ := client.Search(ctx, convsearch.Query{
//	    ConversationID: "c1",
//	    Message:        "waterproof ones",
//	    Index:          "products",
//	})
package convsearch

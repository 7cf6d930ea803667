// Package metadata holds the in-memory model of a remote organization's
// schema: entities with their attributes and relationships, option sets,
// and the message graph (messages, pairs, requests, responses, fields and
// filters) reconstructed from flat, paged query rows.
//
// The message graph is assembled by folding RowResults into a Messages
// collection with Fill. Folding is an idempotent upsert: re-applying a row
// never duplicates children nor rewrites identity fields.
//
//	msgs := metadata.NewMessages()
//	for _, page := range pages {
//	    rs, err := metadata.DecodeResultSet(page)
//	    if err != nil {
//	        return err
//	    }
//	    msgs.Fill(rs.Results...)
//	}
//
// After loading, an Organization is treated as read-only input for code
// generation; the only permitted mutation is AddOptionSet.
package metadata

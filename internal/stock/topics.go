package stock

const TopicInventoryEvents = "inventory.events"

// Partition key = product_id, so all events for one stock line keep
// their order.
func PartitionKey(productID string) []byte { return []byte(productID) }

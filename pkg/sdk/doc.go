// Package sdk provides a typed Go client for the taskd HTTP API.
//
// The client wraps the server's endpoints with one method per
// operation and automatic retry via fortify.
//
// Usage:
//
//	c := sdk.NewClient("http://127.0.0.1:8420")
//
//	id, _ := c.CreateProject(ctx, "website", "company website relaunch")
//	taskID, _ := c.CreateTask(ctx, id, "write copy", "landing page copy")
//	_ = c.SetTaskState(ctx, id, taskID, "InProgress")
//
//	task, _ := c.GetTask(ctx, id, taskID)
//	fmt.Println(task.State)
package sdk

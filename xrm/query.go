package xrm

import "context"

// Query is a typed query over the records of one entity.
type Query[T any, PT RecordPtr[T]] struct {
	ctx  *ServiceContext
	expr *QueryExpression
}

// CreateQuery returns a query over every record of logicalName, read as T.
func CreateQuery[T any, PT RecordPtr[T]](c *ServiceContext, logicalName string) *Query[T, PT] {
	return &Query[T, PT]{
		ctx:  c,
		expr: &QueryExpression{EntityName: logicalName, ColumnSet: NewColumnSet()},
	}
}

// Select restricts the attributes returned.
func (q *Query[T, PT]) Select(columns ...string) *Query[T, PT] {
	q.expr.ColumnSet = NewColumnSet(columns...)
	return q
}

// Top limits the number of records returned.
func (q *Query[T, PT]) Top(n int) *Query[T, PT] {
	q.expr.TopCount = n
	return q
}

// Expression returns the underlying query expression.
func (q *Query[T, PT]) Expression() *QueryExpression { return q.expr }

// List runs the query and returns the records, following paging cookies.
// Returned records are attached to the context.
func (q *Query[T, PT]) List(ctx context.Context) ([]PT, error) {
	if q.ctx == nil || q.ctx.service == nil {
		return nil, ErrNoService
	}
	expr := *q.expr
	expr.PageInfo = &PagingInfo{PageNumber: 1}
	var out []PT
	for {
		page, err := q.ctx.service.RetrieveMultiple(ctx, &expr)
		if err != nil {
			return nil, err
		}
		for _, base := range page.Entities {
			r := ToRecord[T, PT](base)
			q.ctx.Attach(r)
			out = append(out, r)
		}
		if !page.MoreRecords || (expr.TopCount > 0 && len(out) >= expr.TopCount) {
			return out, nil
		}
		expr.PageInfo = &PagingInfo{PageNumber: expr.PageInfo.PageNumber + 1, PagingCookie: page.PagingCookie}
	}
}

package theme233

import "github.com/rcrowley/go-metrics"

var metricsRegistry = metrics.NewRegistry()

var (
	converterCacheHits   = metrics.GetOrRegisterCounter("converter.cache.hit", metricsRegistry)
	converterCacheMisses = metrics.GetOrRegisterCounter("converter.cache.miss", metricsRegistry)
	injectedAttributes   = metrics.GetOrRegisterCounter("inject.attribute", metricsRegistry)
	injectionFailures    = metrics.GetOrRegisterCounter("inject.failure", metricsRegistry)
	reloadTimer          = metrics.GetOrRegisterTimer("hive.reload", metricsRegistry)
)

// Metrics 返回注入过程的统计指标
//
//	converter.cache.hit / converter.cache.miss  转换缓存命中与未命中次数
//	inject.attribute / inject.failure            字段注入成功与失败次数
//	hive.reload                                  Hive 重新注入耗时
func Metrics() metrics.Registry {
	return metricsRegistry
}
